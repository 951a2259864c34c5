package render

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
)

// TocEntry is one heading of a page's own table of contents. ID is the
// heading's anchor.
type TocEntry struct {
	Name     string
	ID       string
	Children []TocEntry
}

// PageToc lists a page's h2 headings, each with the h3 headings below it.
// Other levels are left out.
type PageToc []TocEntry

// extractPageToc walks a parsed chapter and collects its h2/h3 headings in
// document order. An h3 before any h2 becomes a top-level entry.
func extractPageToc(doc ast.Node, source []byte) PageToc {
	var toc PageToc
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		entry := TocEntry{Name: headingText(heading, source)}
		if id, ok := heading.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				entry.ID = string(b)
			}
		}
		if entry.Name == "" {
			return ast.WalkSkipChildren, nil
		}

		switch {
		case heading.Level == 2:
			toc = append(toc, entry)
		case heading.Level == 3 && len(toc) > 0:
			last := &toc[len(toc)-1]
			last.Children = append(last.Children, entry)
		case heading.Level == 3:
			toc = append(toc, entry)
		}
		return ast.WalkSkipChildren, nil
	})
	return toc
}

// headingText concatenates the text of all inline descendants, so styled
// and code parts of a heading are kept.
func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			switch t := child.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(source))
				if t.SoftLineBreak() {
					buf.WriteByte(' ')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				collect(child)
			}
		}
	}
	collect(n)
	return buf.String()
}
