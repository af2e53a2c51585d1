// Package link builds portable link targets: a relative path from the
// source document's folder to the exhibit file, plus an optional
// viewer page fragment.
package link

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Viewer selects the page-fragment convention of the PDF viewer the
// links are aimed at. Both accept "#page=N"; Chrome additionally
// misreads targets whose filenames contain spaces or internal periods
// as network URLs, which is what sanitization exists for.
type Viewer int

const (
	Acrobat Viewer = iota
	Chrome
)

// ParseViewer maps a config string to a Viewer; empty means Acrobat.
func ParseViewer(s string) (Viewer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "acrobat":
		return Acrobat, nil
	case "chrome":
		return Chrome, nil
	default:
		return Acrobat, fmt.Errorf("unknown viewer %q (want acrobat or chrome)", s)
	}
}

func (v Viewer) String() string {
	if v == Chrome {
		return "chrome"
	}
	return "acrobat"
}

// Target is the final link artifact for one resolved citation.
type Target struct {
	// RelativePath from the source document's folder to the file,
	// forward-slash separated.
	RelativePath string

	// PageFragment is "#page=N", or "" for a document-level link.
	PageFragment string

	// DisplayText is shown as the hyperlink text in the output.
	DisplayText string
}

// Href is the full link destination: relative path plus fragment.
func (t Target) Href() string {
	return t.RelativePath + t.PageFragment
}

// Relative computes the path from sourceDir to targetPath using their
// common ancestor, so links stay valid when both trees are relocated
// together. Separators are forced to forward slashes. When no relative
// path exists (different volumes), the bare filename is used, matching
// the behavior of dropping both files side by side.
func Relative(sourceDir, targetPath string) string {
	rel, err := filepath.Rel(sourceDir, targetPath)
	if err != nil {
		return filepath.Base(targetPath)
	}
	return filepath.ToSlash(rel)
}

// Build constructs the Target for a resolved match. page <= 0 yields a
// document-level link with no fragment.
func Build(sourceDir, targetPath string, page int, display string) Target {
	t := Target{
		RelativePath: Relative(sourceDir, targetPath),
		DisplayText:  display,
	}
	if page > 0 {
		t.PageFragment = fmt.Sprintf("#page=%d", page)
	}
	return t
}

// NeedsSanitization reports whether a filename would trip Chrome's PDF
// viewer: any space, or a period other than the extension's dot.
func NeedsSanitization(filename string) bool {
	name := filepath.Base(filename)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return strings.ContainsAny(stem, " .")
}
