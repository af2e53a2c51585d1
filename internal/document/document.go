// Package document reads source documents and writes resolved links
// back into them.
//
// Extraction and insertion share one byte-offset space: ExtractText
// returns a masked copy of the file in which frontmatter and code
// regions are blanked out but every remaining byte keeps its original
// position, so an offset found in the extracted text indexes directly
// into the file on disk. InsertLinks applies placements back to front
// and rewrites the file atomically.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mjlindsay/anchor/internal/atomicfile"
	"github.com/mjlindsay/anchor/internal/link"
)

// Placement pairs a citation occurrence with the link target built
// for it. Offset and RawText come from extraction; the text at Offset
// must still read RawText when the placement is applied.
type Placement struct {
	Offset  int
	RawText string
	Target  link.Target
}

// Reader yields the linkable text of a source document.
type Reader interface {
	ExtractText() (string, error)
}

// Writer applies resolved placements to a source document.
type Writer interface {
	InsertLinks(placements []Placement) error
}

// File is a markdown or plain-text document on disk. It implements
// both Reader and Writer.
type File struct {
	Path string

	content   []byte
	overrides Overrides
}

// Open reads the document and parses its frontmatter overrides.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	f := &File{Path: path, content: data}
	ov, err := parseOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.overrides = ov
	return f, nil
}

// Overrides returns the document's frontmatter overrides. Zero values
// mean the document did not set the field.
func (f *File) Overrides() Overrides {
	return f.overrides
}

// Markdown reports whether the file gets markdown-aware masking.
func (f *File) Markdown() bool {
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// ExtractText returns the file's content with frontmatter, code
// blocks, and inline code blanked to spaces. Byte offsets into the
// returned string are valid offsets into the file.
func (f *File) ExtractText() (string, error) {
	masked := append([]byte(nil), f.content...)
	maskRegion(masked, 0, frontmatterEnd(f.content))
	if f.Markdown() {
		maskCode(masked, f.content)
	}
	return string(masked), nil
}

// InsertLinks rewrites each placement's raw text as a markdown link
// and writes the document back atomically. Placements may arrive in
// any order; nothing is written if any placement no longer matches
// the text at its offset.
func (f *File) InsertLinks(placements []Placement) error {
	if len(placements) == 0 {
		return nil
	}

	sorted := append([]Placement(nil), placements...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset > sorted[j].Offset
	})

	content := string(f.content)
	for _, p := range sorted {
		end := p.Offset + len(p.RawText)
		if p.Offset < 0 || end > len(content) || content[p.Offset:end] != p.RawText {
			return fmt.Errorf("%s: text %q not found at offset %d", f.Path, p.RawText, p.Offset)
		}
		content = content[:p.Offset] + "[" + p.RawText + "](" + p.Target.Href() + ")" + content[end:]
	}

	if err := atomicfile.WriteFile(f.Path, []byte(content), 0); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	f.content = []byte(content)
	return nil
}

// maskRegion blanks [start, end) to spaces, preserving newlines so
// the masked copy keeps the file's line structure.
func maskRegion(dst []byte, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(dst) {
		end = len(dst)
	}
	for i := start; i < end; i++ {
		if dst[i] != '\n' {
			dst[i] = ' '
		}
	}
}
