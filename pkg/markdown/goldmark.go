package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// GoldmarkSource is a Source backed by goldmark's CommonMark parser. The
// document is parsed once up front; Next then replays the flattened events.
type GoldmarkSource struct {
	events []Event
	pos    int
}

// NewSource parses src and returns a Source over its events.
func NewSource(src []byte) *GoldmarkSource {
	return &GoldmarkSource{events: Events(src)}
}

// Next returns the next event in document order.
func (s *GoldmarkSource) Next() (Event, bool) {
	if s.pos >= len(s.events) {
		return Event{}, false
	}
	ev := s.events[s.pos]
	s.pos++
	return ev, true
}

// Events parses src and returns every event in document order.
func Events(src []byte) []Event {
	reader := text.NewReader(src)
	doc := goldmark.DefaultParser().Parse(reader)

	b := &streamBuilder{src: src}
	b.walk(doc)
	return b.events
}

type streamBuilder struct {
	src    []byte
	events []Event
	last   int // offset of the most recently emitted event

	// guessed is set when last came from nextLineStart rather than a segment.
	guessed    bool
	guessedNew bool
}

func (b *streamBuilder) emit(e Event) {
	b.events = append(b.events, e)
	b.last = e.Offset
	b.guessed = b.guessedNew
	b.guessedNew = false
}

func (b *streamBuilder) walkChildren(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		b.walk(c)
	}
}

func (b *streamBuilder) walk(n ast.Node) {
	switch node := n.(type) {
	case *ast.Document, *ast.TextBlock:
		// Transparent: tight list items hold a TextBlock, not a Paragraph.
		b.walkChildren(n)

	case *ast.Text:
		if v := node.Segment.Value(b.src); len(v) > 0 {
			b.emit(Event{Kind: EventText, Text: string(v), Offset: node.Segment.Start})
		}
		if node.HardLineBreak() {
			b.emit(Event{Kind: EventHardBreak, Offset: node.Segment.Stop})
		} else if node.SoftLineBreak() {
			b.emit(Event{Kind: EventSoftBreak, Offset: node.Segment.Stop})
		}

	case *ast.String:
		b.emit(Event{Kind: EventText, Text: string(node.Value), Offset: b.last})

	case *ast.CodeSpan:
		b.emit(Event{Kind: EventCode, Text: b.inlineText(node), Offset: b.offsetOf(node)})

	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < node.Segments.Len(); i++ {
			seg := node.Segments.At(i)
			buf.Write(seg.Value(b.src))
		}
		b.emit(Event{Kind: EventHTML, Text: buf.String(), Offset: b.offsetOf(node)})

	case *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(b.src))
		}
		if node.HasClosure() {
			buf.Write(node.ClosureLine.Value(b.src))
		}
		b.emit(Event{Kind: EventHTML, Text: buf.String(), Offset: b.offsetOf(node)})

	case *ast.ThematicBreak:
		b.emit(Event{Kind: EventRule, Offset: b.offsetOf(node)})

	case *ast.AutoLink:
		tag := Tag{Kind: TagLink, Destination: string(node.URL(b.src))}
		off := b.offsetOf(node)
		b.emit(Event{Kind: EventStart, Tag: tag, Offset: off})
		b.emit(Event{Kind: EventText, Text: string(node.Label(b.src)), Offset: off})
		b.emit(Event{Kind: EventEnd, Tag: tag, Offset: off})

	case *ast.CodeBlock, *ast.FencedCodeBlock:
		tag := Tag{Kind: TagCodeBlock}
		b.emit(Event{Kind: EventStart, Tag: tag, Offset: b.offsetOf(node)})
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.emit(Event{Kind: EventText, Text: string(seg.Value(b.src)), Offset: seg.Start})
		}
		b.emit(Event{Kind: EventEnd, Tag: tag, Offset: b.last})

	default:
		tag := tagFor(n)
		b.emit(Event{Kind: EventStart, Tag: tag, Offset: b.offsetOf(n)})
		b.walkChildren(n)
		b.emit(Event{Kind: EventEnd, Tag: tag, Offset: b.last})
	}
}

// inlineText concatenates the text of n's descendants.
func (b *streamBuilder) inlineText(n ast.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(b.src))
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(b.inlineText(c))
		}
	}
	return buf.String()
}

// offsetOf returns the byte offset of the first source byte belonging to n.
// Nodes without any segment, such as empty list items, are placed on the
// first non-blank line after the last emitted event. Nested empty nodes
// share the line of their empty parent.
func (b *streamBuilder) offsetOf(n ast.Node) int {
	if off, ok := firstOffset(n); ok {
		return off
	}
	if n.Type() != ast.TypeBlock {
		return b.last
	}
	b.guessedNew = true
	if b.guessed || len(b.events) == 0 {
		return b.last
	}
	return b.nextLineStart(b.last)
}

// nextLineStart returns the offset of the first non-blank character on a
// line after the one holding from.
func (b *streamBuilder) nextLineStart(from int) int {
	i := bytes.IndexByte(b.src[from:], '\n')
	if i < 0 {
		return len(b.src)
	}
	pos := from + i + 1
	for pos < len(b.src) {
		j := pos
		for j < len(b.src) && (b.src[j] == ' ' || b.src[j] == '\t' || b.src[j] == '\r') {
			j++
		}
		if j < len(b.src) && b.src[j] == '\n' {
			pos = j + 1
			continue
		}
		return j
	}
	return len(b.src)
}

func firstOffset(n ast.Node) (int, bool) {
	switch node := n.(type) {
	case *ast.Text:
		return node.Segment.Start, true
	case *ast.RawHTML:
		if node.Segments.Len() > 0 {
			return node.Segments.At(0).Start, true
		}
	}
	// Lines panics on inline nodes.
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines.Len() > 0 {
			return lines.At(0).Start, true
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := firstOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

func tagFor(n ast.Node) Tag {
	switch node := n.(type) {
	case *ast.Heading:
		return Tag{Kind: TagHeading, Level: node.Level}
	case *ast.Paragraph:
		return Tag{Kind: TagParagraph}
	case *ast.List:
		return Tag{Kind: TagList, Ordered: node.IsOrdered()}
	case *ast.ListItem:
		return Tag{Kind: TagItem}
	case *ast.Link:
		return Tag{Kind: TagLink, Destination: string(node.Destination)}
	case *ast.Image:
		return Tag{Kind: TagImage, Destination: string(node.Destination)}
	case *ast.Emphasis:
		return Tag{Kind: TagEmphasis, Level: node.Level}
	case *ast.Blockquote:
		return Tag{Kind: TagBlockQuote}
	}
	return Tag{Kind: TagOther}
}
