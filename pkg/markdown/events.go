// Package markdown turns markdown text into a flat, ordered stream of
// block/inline events, the shape the summary parser consumes.
package markdown

import "fmt"

// EventKind identifies what an Event carries.
type EventKind int

const (
	EventStart     EventKind = iota // Opening of a Tag
	EventEnd                        // Closing of a Tag
	EventText                       // Plain inline text
	EventCode                       // Inline code span, Text holds its content
	EventSoftBreak                  // Line break inside a paragraph
	EventHardBreak                  // Explicit line break
	EventHTML                       // Raw HTML (blocks and inline), including comments
	EventRule                       // Thematic break ("---")
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "Start"
	case EventEnd:
		return "End"
	case EventText:
		return "Text"
	case EventCode:
		return "Code"
	case EventSoftBreak:
		return "SoftBreak"
	case EventHardBreak:
		return "HardBreak"
	case EventHTML:
		return "HTML"
	case EventRule:
		return "Rule"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// TagKind identifies the container a Start/End pair delimits.
type TagKind int

const (
	TagOther TagKind = iota
	TagHeading
	TagParagraph
	TagList
	TagItem
	TagLink
	TagImage
	TagEmphasis
	TagBlockQuote
	TagCodeBlock
)

func (k TagKind) String() string {
	switch k {
	case TagHeading:
		return "Heading"
	case TagParagraph:
		return "Paragraph"
	case TagList:
		return "List"
	case TagItem:
		return "Item"
	case TagLink:
		return "Link"
	case TagImage:
		return "Image"
	case TagEmphasis:
		return "Emphasis"
	case TagBlockQuote:
		return "BlockQuote"
	case TagCodeBlock:
		return "CodeBlock"
	}
	return "Other"
}

// Tag describes a container. Level is the heading level or emphasis
// strength; Destination is set for links and images.
type Tag struct {
	Kind        TagKind
	Level       int
	Ordered     bool
	Destination string
}

// Is reports whether the tag is of the given kind. For headings a non-zero
// level must also match.
func (t Tag) Is(kind TagKind, level int) bool {
	if t.Kind != kind {
		return false
	}
	return level == 0 || t.Level == level
}

func (t Tag) String() string {
	switch t.Kind {
	case TagHeading, TagEmphasis:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Level)
	case TagLink, TagImage:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Destination)
	}
	return t.Kind.String()
}

// Event is one item of the stream. Offset is the byte offset into the
// source text of the construct the event belongs to.
type Event struct {
	Kind   EventKind
	Tag    Tag
	Text   string
	Offset int
}

// IsStart reports whether e opens a tag of the given kind (and level, if non-zero).
func (e Event) IsStart(kind TagKind, level int) bool {
	return e.Kind == EventStart && e.Tag.Is(kind, level)
}

// IsEnd reports whether e closes a tag of the given kind (and level, if non-zero).
func (e Event) IsEnd(kind TagKind, level int) bool {
	return e.Kind == EventEnd && e.Tag.Is(kind, level)
}

func (e Event) String() string {
	switch e.Kind {
	case EventStart, EventEnd:
		return fmt.Sprintf("%s(%s)@%d", e.Kind, e.Tag, e.Offset)
	case EventText, EventCode, EventHTML:
		return fmt.Sprintf("%s(%q)@%d", e.Kind, e.Text, e.Offset)
	}
	return fmt.Sprintf("%s@%d", e.Kind, e.Offset)
}

// Source delivers events in document order. Next returns false once the
// stream is exhausted.
//
// Contract relied on by the summary parser: top-level inline content and
// the content of loose list items is wrapped in a Paragraph tag, while
// tight list items carry their inline content directly. A Paragraph start
// seen after the numbered lists is what marks the beginning of the suffix
// chapters, so a Source that never emits Paragraph tags makes every
// trailing chapter part of the numbered section.
type Source interface {
	Next() (Event, bool)
}
