// Package sanitize renames exhibit files into Chrome-safe form.
//
// Chrome's PDF viewer can misread a relative link whose filename
// contains spaces or internal periods as a network URL. Sanitization
// rewrites such names ("Ex. 1 Memo.pdf" -> "Ex_1_Memo.pdf") and is
// all-or-nothing: either every referenced file is renamed and every
// link updated, or nothing changes.
package sanitize

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrConflict is returned when two distinct files sanitize to the same
// name, or a sanitized name is already taken on disk. It is fatal for
// the sanitization step only and leaves no partial state.
var ErrConflict = errors.New("sanitization conflict")

var underscoreRuns = regexp.MustCompile(`_{2,}`)

// NormalizeFilename converts a filename to Chrome-friendly form:
// spaces and internal periods become underscores, runs collapse to a
// single underscore, and the extension's own dot survives.
// Names already clean come back unchanged.
func NormalizeFilename(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	var b strings.Builder
	for _, r := range stem {
		if r == ' ' || r == '.' {
			b.WriteByte('_')
		} else {
			b.WriteRune(r)
		}
	}
	cleaned := underscoreRuns.ReplaceAllString(b.String(), "_")
	cleaned = strings.TrimRight(cleaned, "_")
	if cleaned == "" {
		return name
	}
	return cleaned + ext
}

// Rename is one planned file rename.
type Rename struct {
	OldPath string
	NewPath string
}

// Plan is a conflict-checked set of renames, applied atomically as a
// set.
type Plan struct {
	Renames []Rename

	byOld map[string]string
}

// PlanRenames builds the rename plan for the given files (typically
// the files referenced by at least one link target). Paths whose names
// are already clean are left out of the plan. Any conflict aborts
// planning with ErrConflict before anything is touched.
func PlanRenames(paths []string) (*Plan, error) {
	p := &Plan{byOld: make(map[string]string)}
	claimed := make(map[string]string) // new path -> old path

	for _, old := range paths {
		if _, dup := p.byOld[old]; dup {
			continue
		}
		newName := NormalizeFilename(filepath.Base(old))
		if newName == filepath.Base(old) {
			continue
		}
		newPath := filepath.Join(filepath.Dir(old), newName)

		if prior, taken := claimed[newPath]; taken {
			return nil, fmt.Errorf("%w: %s and %s both normalize to %s",
				ErrConflict, prior, old, newName)
		}
		if _, err := os.Stat(newPath); err == nil {
			return nil, fmt.Errorf("%w: %s already exists, cannot rename %s",
				ErrConflict, newPath, old)
		}

		claimed[newPath] = old
		p.byOld[old] = newPath
		p.Renames = append(p.Renames, Rename{OldPath: old, NewPath: newPath})
	}
	return p, nil
}

// Empty reports whether the plan has no renames.
func (p *Plan) Empty() bool {
	return len(p.Renames) == 0
}

// NewPathFor returns the post-rename path for a file, or the input
// path unchanged when the file is not part of the plan.
func (p *Plan) NewPathFor(old string) string {
	if n, ok := p.byOld[old]; ok {
		return n
	}
	return old
}

// Apply performs every rename. A failure mid-set rolls back the
// renames already done, so the set either applies fully or not at all.
func (p *Plan) Apply() error {
	var done []Rename
	for _, r := range p.Renames {
		if err := os.Rename(r.OldPath, r.NewPath); err != nil {
			for i := len(done) - 1; i >= 0; i-- {
				// Best effort; the original name is still free.
				_ = os.Rename(done[i].NewPath, done[i].OldPath)
			}
			return fmt.Errorf("rename %s: %w", r.OldPath, err)
		}
		done = append(done, r)
	}
	return nil
}
