package document

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// maskCode blanks fenced code blocks, indented code blocks, and
// inline code spans in dst. src is the unmasked original the parser
// runs over; dst and src must be the same length.
func maskCode(dst, src []byte) {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			maskLines(dst, node.Lines())
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			maskLines(dst, node.Lines())
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			for c := node.FirstChild(); c != nil; c = c.NextSibling() {
				if t, ok := c.(*ast.Text); ok {
					maskRegion(dst, t.Segment.Start, t.Segment.Stop)
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

func maskLines(dst []byte, lines *text.Segments) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		maskRegion(dst, seg.Start, seg.Stop)
	}
}
