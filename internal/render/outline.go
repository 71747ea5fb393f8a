package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SourceHeading is a table of contents entry with the source line it starts on.
type SourceHeading struct {
	Heading
	Line int
}

// Outline lists the h2 to h4 headings of source with their zero-based line
// numbers. Ids match the ones Render assigns.
func (r *Renderer) Outline(source string) []SourceHeading {
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var out []SourceHeading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if heading.Level < minTOCLevel || heading.Level > maxTOCLevel {
			return ast.WalkSkipChildren, nil
		}

		line := 0
		if heading.Lines().Len() > 0 {
			line = bytes.Count(src[:heading.Lines().At(0).Start], []byte("\n"))
		}
		out = append(out, SourceHeading{
			Heading: Heading{ID: HeadingID(len(out)), Text: nodeText(heading, src), Level: heading.Level},
			Line:    line,
		})
		return ast.WalkSkipChildren, nil
	})

	return out
}

func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		}
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}
