package pdf

import (
	"strconv"

	gocache "github.com/patrickmn/go-cache"
)

// Cached wraps a Reader with an in-memory memoization layer so that a
// run never extracts the same page twice. Entries never expire; the
// cache lives only for the process.
type Cached struct {
	inner Reader
	store *gocache.Cache
}

// NewCached wraps inner in a memoizing reader.
func NewCached(inner Reader) *Cached {
	return &Cached{
		inner: inner,
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// NumPages implements Reader, memoized per path.
func (c *Cached) NumPages(path string) (int, error) {
	key := "np:" + path
	if v, ok := c.store.Get(key); ok {
		return v.(int), nil
	}
	n, err := c.inner.NumPages(path)
	if err != nil {
		return 0, err
	}
	c.store.Set(key, n, gocache.NoExpiration)
	return n, nil
}

// PageText implements Reader, memoized per (path, page). Errors are
// not cached, so transient failures may be retried.
func (c *Cached) PageText(path string, page int) (string, error) {
	key := "pt:" + path + "#" + strconv.Itoa(page)
	if v, ok := c.store.Get(key); ok {
		return v.(string), nil
	}
	text, err := c.inner.PageText(path, page)
	if err != nil {
		return "", err
	}
	c.store.Set(key, text, gocache.NoExpiration)
	return text, nil
}
