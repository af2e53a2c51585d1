// Package retry implements the bounded retry-with-backoff policy used
// for transient I/O failures (locked or momentarily unavailable files,
// flaky collaborator calls).
package retry

import (
	"context"
	"fmt"
	"time"
)

// Mode selects the backoff growth curve.
type Mode string

const (
	Fixed       Mode = "fixed"
	Linear      Mode = "linear"
	Exponential Mode = "exponential"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       Mode          // fixed|linear|exponential
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // retry attempts after the first failure
}

// Default returns the engine default: linear backoff, 100ms base,
// 2s cap, 3 retries.
func Default() Policy {
	return Policy{Mode: Linear, Initial: 100 * time.Millisecond, Max: 2 * time.Second, MaxRetries: 3}
}

// New builds a policy from raw settings; zero or invalid values fall
// back to the defaults, and Initial is clamped to Max.
func New(mode Mode, initial, max time.Duration, maxRetries int) Policy {
	p := Default()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if max > 0 {
		p.Max = max
	}
	switch mode {
	case Fixed, Linear, Exponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the backoff delay before the given retry (1-based:
// first retry => 1).
func (p Policy) Delay(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case Fixed:
		d = p.Initial
	case Exponential:
		d = p.Initial * (1 << (retry - 1))
	default: // linear
		d = time.Duration(retry) * p.Initial
	}
	if d > p.Max {
		return p.Max
	}
	return d
}

// Validate reports whether the policy can be applied.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial must be >0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max must be >0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do runs fn, retrying per the policy. It sleeps the backoff delay
// between attempts and aborts early if ctx is cancelled; the last
// error is returned once retries are exhausted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay(attempt + 1)):
		}
	}
}
