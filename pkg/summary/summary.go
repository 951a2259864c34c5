// Package summary parses a book's SUMMARY.md into a table of contents tree.
//
// # Summary Format
//
// Title: the document must begin with a level-one heading, generally
// "# Summary". Its text (with styling removed) becomes the book title.
//
// Prefix chapters: plain links before the first list. They are never
// numbered and cannot be nested.
//
//	[Title of prefix element](relative/path/to/markdown.md)
//
// Part titles: a level-one heading between lists. Parts are purely
// organisational; numbering continues across them.
//
// Numbered chapters: list items ("-" or "*") holding exactly one link.
// Nesting lists nests chapters, and every item gets a dotted section number.
//
//	# Title of Part
//
//	- [Title of the Chapter](relative/path/to/markdown.md)
//	  - [Nested](relative/path/to/nested.md)
//
// Suffix chapters: plain links after the numbered section, same rules as
// prefix chapters. A list after them is an error.
//
// A link with an empty target ("[Draft]()") is a draft chapter: it shows up
// in the table of contents but is never rendered.
package summary

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Summary is the parsed SUMMARY.md, specifying how the book is laid out.
type Summary struct {
	Title            string    `json:"title" yaml:"title"`
	PrefixChapters   []Chapter `json:"prefix_chapters,omitempty" yaml:"prefix_chapters,omitempty"`
	NumberedChapters []Link    `json:"numbered_chapters,omitempty" yaml:"numbered_chapters,omitempty"`
	SuffixChapters   []Chapter `json:"suffix_chapters,omitempty" yaml:"suffix_chapters,omitempty"`
}

// Chapter is a named entry of the table of contents. An empty Location
// marks a draft.
type Chapter struct {
	Name     string `json:"name" yaml:"name"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

// IsDraft reports whether the chapter has no backing file.
func (c Chapter) IsDraft() bool {
	return c.Location == ""
}

// Link is a numbered table of contents node, roughly the equivalent of
// "- [Some section](./path/to/file.md)" plus whatever is nested below it.
type Link struct {
	Chapter       Chapter       `json:"chapter" yaml:"chapter"`
	NestedItems   []Link        `json:"nested_items,omitempty" yaml:"nested_items,omitempty"`
	SectionNumber SectionNumber `json:"section_number,omitempty" yaml:"section_number,omitempty"`
}

// Walk calls fn for l and then, depth first, for every nested link.
// It stops at the first error.
func (l *Link) Walk(fn func(*Link) error) error {
	if err := fn(l); err != nil {
		return err
	}
	for i := range l.NestedItems {
		if err := l.NestedItems[i].Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Chapters calls fn for every chapter in document order: prefix chapters,
// the numbered tree depth first, then suffix chapters.
func (s *Summary) Chapters(fn func(*Chapter) error) error {
	for i := range s.PrefixChapters {
		if err := fn(&s.PrefixChapters[i]); err != nil {
			return err
		}
	}
	for i := range s.NumberedChapters {
		err := s.NumberedChapters[i].Walk(func(l *Link) error {
			return fn(&l.Chapter)
		})
		if err != nil {
			return err
		}
	}
	for i := range s.SuffixChapters {
		if err := fn(&s.SuffixChapters[i]); err != nil {
			return err
		}
	}
	return nil
}

// MapChapters applies fn to every chapter in place.
func (s *Summary) MapChapters(fn func(*Chapter)) {
	_ = s.Chapters(func(c *Chapter) error {
		fn(c)
		return nil
	})
}

// ResolveLocations rewrites every relative chapter location to a cleaned
// path under root. Drafts and absolute locations are left untouched.
func (s *Summary) ResolveLocations(root string) {
	s.MapChapters(func(c *Chapter) {
		if c.IsDraft() || filepath.IsAbs(c.Location) {
			return
		}
		c.Location = filepath.Join(root, filepath.FromSlash(c.Location))
	})
}

// SectionNumber is a dotted chapter position like "1.2.3.", one value per
// nesting level.
type SectionNumber []int

// Child returns a new number with n appended; s itself is not modified.
func (s SectionNumber) Child(n int) SectionNumber {
	child := make(SectionNumber, len(s), len(s)+1)
	copy(child, s)
	return append(child, n)
}

// Depth is the nesting level, 1 for top-level chapters.
func (s SectionNumber) Depth() int {
	return len(s)
}

func (s SectionNumber) String() string {
	if len(s) == 0 {
		return "0"
	}
	var b strings.Builder
	for _, n := range s {
		b.WriteString(strconv.Itoa(n))
		b.WriteByte('.')
	}
	return b.String()
}

// shiftSectionNumbers adds by to the value at index level of every section
// number in links, depth first. Used to rebase a freshly parsed group onto
// the running counter of the numbered section.
func shiftSectionNumbers(links []Link, level, by int) {
	if by == 0 {
		return
	}
	for i := range links {
		if n := links[i].SectionNumber; len(n) > level {
			n[level] += by
		}
		shiftSectionNumbers(links[i].NestedItems, level, by)
	}
}
