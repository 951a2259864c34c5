package summary

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/markdown"
)

const errLinkItem = "The link items for nested chapters must only contain a hyperlink"

// Parse parses the text of a SUMMARY.md file.
func Parse(text string) (*Summary, error) {
	return NewParser(text, nil).Parse()
}

// Parser is a recursive descent parser over a markdown event stream.
//
// Grammar, roughly:
//
//	summary           ::= title prefix_chapters numbered_chapters suffix_chapters
//	title             ::= "# " TEXT
//	prefix_chapters   ::= chapter*
//	numbered_chapters ::= (part_title? dotted_chapter+)+
//	dotted_chapter    ::= INDENT* ("-" | "*") chapter
//	chapter           ::= "[" TEXT "]" "(" TEXT ")"
//	suffix_chapters   ::= chapter*
//
// A Parser is single use.
type Parser struct {
	src    string
	stream markdown.Source
	offset int // offset of the last event read from stream
	log    *logrus.Entry

	// A single event can be pushed back onto the stream.
	back *markdown.Event
}

// NewParser creates a parser over text using the goldmark event source. A
// nil log discards output.
func NewParser(text string, log *logrus.Entry) *Parser {
	return NewParserFromSource(text, markdown.NewSource([]byte(text)), log)
}

// NewParserFromSource creates a parser over an arbitrary event source. text
// must be the document the source was produced from; it is only used to turn
// event offsets into line and column numbers.
func NewParserFromSource(text string, src markdown.Source, log *logrus.Entry) *Parser {
	if log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		log = logrus.NewEntry(logger)
	}
	return &Parser{
		src:    text,
		stream: src,
		log:    log.WithField("component", "summary"),
	}
}

// Parse consumes the whole stream and returns the summary. Any error aborts
// the parse; partial trees are never returned because numbering depends on
// the complete document.
func (p *Parser) Parse() (*Summary, error) {
	title, err := p.parseTitle()
	if err != nil {
		return nil, err
	}

	prefix, err := p.parseAffix(true)
	if err != nil {
		return nil, fmt.Errorf("parse prefix chapters: %w", err)
	}
	numbered, err := p.parseParts()
	if err != nil {
		return nil, fmt.Errorf("parse numbered chapters: %w", err)
	}
	suffix, err := p.parseAffix(false)
	if err != nil {
		return nil, fmt.Errorf("parse suffix chapters: %w", err)
	}

	return &Summary{
		Title:            title,
		PrefixChapters:   prefix,
		NumberedChapters: numbered,
		SuffixChapters:   suffix,
	}, nil
}

func (p *Parser) parseTitle() (string, error) {
	ev, ok := p.nextEvent()
	if !ok || !ev.IsStart(markdown.TagHeading, 1) {
		return "", p.parseError("Could not parse title")
	}
	p.log.Debug("Found a h1 in the SUMMARY")

	events, err := p.collectUntilEnd(markdown.TagHeading)
	if err != nil {
		return "", err
	}
	return stringifyEvents(events), nil
}

// parseAffix collects the un-numbered chapters before or after the numbered
// section.
func (p *Parser) parseAffix(isPrefix bool) ([]Chapter, error) {
	kind := "suffix"
	if isPrefix {
		kind = "prefix"
	}
	p.log.Debugf("Parsing %s items", kind)

	var items []Chapter
	for {
		ev, ok := p.nextEvent()
		if !ok {
			return items, nil
		}

		switch {
		case ev.IsStart(markdown.TagList, 0), ev.IsStart(markdown.TagHeading, 1):
			if isPrefix {
				// Start of the numbered section.
				p.putBack(ev)
				return items, nil
			}
			if ev.Tag.Kind == markdown.TagHeading {
				return nil, p.parseError("Suffix chapters cannot be followed by a part title")
			}
			return nil, p.parseError("Suffix chapters cannot be followed by a list")

		case ev.IsStart(markdown.TagLink, 0):
			chapter, err := p.parseLink(ev.Tag.Destination)
			if err != nil {
				return nil, err
			}
			items = append(items, chapter)
		}
	}
}

// parseParts parses the numbered section, made of one or more optionally
// titled parts. The section counter runs across all parts.
func (p *Parser) parseParts() ([]Link, error) {
	var parts []Link
	rootItems := 0

	for {
		ev, ok := p.nextEvent()
		if !ok {
			break
		}

		switch {
		case ev.IsStart(markdown.TagParagraph, 0) && len(parts) > 0:
			// Start of the suffix chapters.
			p.putBack(ev)
			return parts, nil
		case ev.IsStart(markdown.TagHeading, 1):
			// Part title; only a separator.
			if _, err := p.collectUntilEnd(markdown.TagHeading); err != nil {
				return nil, err
			}
		default:
			p.putBack(ev)
		}

		numbered, err := p.parseNumbered(&rootItems)
		if err != nil {
			return nil, err
		}
		parts = append(parts, numbered...)
	}

	return parts, nil
}

// parseNumbered parses the lists of one part. rootItems is the number of
// top-level chapters already seen in earlier groups and parts; every new
// group is rebased onto it.
func (p *Parser) parseNumbered(rootItems *int) ([]Link, error) {
	var items []Link

	// The first paragraph just opens the part's content. Any later one
	// means a new part or the suffix chapters.
	first := true

	for {
		ev, ok := p.nextEvent()
		if !ok {
			return items, nil
		}

		switch {
		case ev.IsStart(markdown.TagParagraph, 0):
			if !first {
				p.putBack(ev)
				return items, nil
			}
		case ev.IsStart(markdown.TagHeading, 1):
			// Next part.
			p.putBack(ev)
			return items, nil
		case ev.IsStart(markdown.TagList, 0):
			p.putBack(ev)
			group, err := p.parseNestedNumbered(nil)
			if err != nil {
				return nil, err
			}

			// After a rule, comment or sub-heading the group was numbered
			// from 1 again.
			shiftSectionNumbers(group, 0, *rootItems)
			*rootItems += len(group)
			items = append(items, group...)
		case ev.Kind == markdown.EventStart:
			p.log.Tracef("Skipping contents of %s", ev.Tag)
			if _, err := p.collectUntilEnd(ev.Tag.Kind); err != nil {
				return nil, err
			}
		}

		first = false
	}
}

// parseNestedNumbered parses one list, numbering its items below parent.
// The list's own Start event may or may not have been consumed already.
func (p *Parser) parseNestedNumbered(parent SectionNumber) ([]Link, error) {
	p.log.Debugf("Parsing numbered chapters at level %s", parent)
	var items []Link

	for {
		ev, ok := p.nextEvent()
		if !ok {
			return nil, p.parseError("Unterminated list")
		}

		switch {
		case ev.IsStart(markdown.TagItem, 0):
			item, err := p.parseNestedItem(parent, len(items))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		case ev.IsStart(markdown.TagList, 0):
			// This list's own opening tag.
			if len(items) == 0 {
				continue
			}
			last := &items[len(items)-1]
			sub, err := p.parseNestedNumbered(last.SectionNumber)
			if err != nil {
				return nil, err
			}
			last.NestedItems = sub
		case ev.IsEnd(markdown.TagList, 0):
			return items, nil
		case ev.Kind == markdown.EventText || ev.Kind == markdown.EventCode || ev.Kind == markdown.EventStart:
			// Item content left over after a nested list.
			p.log.Warnf("Unexpected %s after a nested list", ev)
			return nil, p.parseError(errLinkItem)
		}
	}
}

func (p *Parser) parseNestedItem(parent SectionNumber, existing int) (Link, error) {
	for {
		ev, ok := p.nextEvent()
		switch {
		case ok && ev.IsStart(markdown.TagParagraph, 0):
			continue
		case ok && ev.IsStart(markdown.TagLink, 0):
			chapter, err := p.parseLink(ev.Tag.Destination)
			if err != nil {
				return Link{}, err
			}
			number := parent.Child(existing + 1)

			location := chapter.Location
			if chapter.IsDraft() {
				location = "[draft]"
			}
			p.log.Tracef("Found chapter: %s %s (%s)", number, chapter.Name, location)

			if err := p.finishItem(); err != nil {
				return Link{}, err
			}
			return Link{Chapter: chapter, SectionNumber: number}, nil
		default:
			p.log.Warnf("Expected a start of a link, actually got %s", ev)
			return Link{}, p.parseError(errLinkItem)
		}
	}
}

// finishItem reads the rest of an item after its link. Only the closing
// paragraph, comments and blank text may follow; a nested list is put back
// for parseNestedNumbered.
func (p *Parser) finishItem() error {
	for {
		ev, ok := p.nextEvent()
		if !ok {
			return nil
		}
		switch {
		case ev.IsEnd(markdown.TagItem, 0):
			return nil
		case ev.IsStart(markdown.TagList, 0):
			p.putBack(ev)
			return nil
		case ev.IsEnd(markdown.TagParagraph, 0),
			ev.Kind == markdown.EventHTML,
			ev.Kind == markdown.EventSoftBreak,
			ev.Kind == markdown.EventHardBreak:
			continue
		case ev.Kind == markdown.EventText && strings.TrimSpace(ev.Text) == "":
			continue
		default:
			p.log.Warnf("Expected the end of a list item, actually got %s", ev)
			return p.parseError(errLinkItem)
		}
	}
}

// parseLink finishes a link once its Start event has been read.
func (p *Parser) parseLink(destination string) (Chapter, error) {
	events, err := p.collectUntilEnd(markdown.TagLink)
	if err != nil {
		return Chapter{}, err
	}
	return Chapter{
		Name:     stringifyEvents(events),
		Location: strings.ReplaceAll(destination, "%20", " "),
	}, nil
}

// collectUntilEnd reads events up to the End matching an already consumed
// Start of the given kind. Nested tags of the same kind are balanced.
func (p *Parser) collectUntilEnd(kind markdown.TagKind) ([]markdown.Event, error) {
	var events []markdown.Event
	depth := 0
	for {
		ev, ok := p.nextEvent()
		if !ok {
			p.log.Debugf("Reached end of stream without finding the closing %s", kind)
			return nil, p.parseError(fmt.Sprintf("Unterminated %s", kind))
		}
		switch {
		case ev.IsStart(kind, 0):
			depth++
		case ev.IsEnd(kind, 0):
			if depth == 0 {
				return events, nil
			}
			depth--
		}
		events = append(events, ev)
	}
}

func (p *Parser) nextEvent() (markdown.Event, bool) {
	if p.back != nil {
		ev := *p.back
		p.back = nil
		p.log.Tracef("Next event (put back): %s", ev)
		return ev, true
	}
	ev, ok := p.stream.Next()
	if ok {
		p.offset = ev.Offset
		p.log.Tracef("Next event: %s", ev)
	}
	return ev, ok
}

func (p *Parser) putBack(ev markdown.Event) {
	if p.back != nil {
		panic("summary: only one event can be put back")
	}
	p.log.Tracef("Back: %s", ev)
	p.back = &ev
}

// currentLocation turns the current byte offset into a 1-based line and
// column (counted in characters).
func (p *Parser) currentLocation() (line, col int) {
	offset := p.offset
	if offset > len(p.src) {
		offset = len(p.src)
	}
	if offset < 0 {
		offset = 0
	}
	previous := p.src[:offset]
	line = strings.Count(previous, "\n") + 1
	startOfLine := strings.LastIndexByte(previous, '\n') + 1
	col = utf8.RuneCountInString(previous[startOfLine:]) + 1
	return line, col
}

func (p *Parser) parseError(msg string) error {
	line, col := p.currentLocation()
	return &ParseError{Line: line, Column: col, Message: msg}
}

// stringifyEvents removes styling from inline events and returns the plain
// text. Soft breaks become a single space.
func stringifyEvents(events []markdown.Event) string {
	var b strings.Builder
	for _, ev := range events {
		switch ev.Kind {
		case markdown.EventText, markdown.EventCode:
			b.WriteString(ev.Text)
		case markdown.EventSoftBreak:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
