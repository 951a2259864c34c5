package summary

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionNumber_String(t *testing.T) {
	tests := []struct {
		number SectionNumber
		want   string
	}{
		{SectionNumber{0}, "0."},
		{SectionNumber{1, 3}, "1.3."},
		{SectionNumber{1, 2, 3}, "1.2.3."},
		{SectionNumber{}, "0"},
		{nil, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.number.String())
	}
}

func TestSectionNumber_ChildDoesNotAlias(t *testing.T) {
	parent := make(SectionNumber, 1, 4)
	parent[0] = 2

	a := parent.Child(1)
	b := parent.Child(2)

	assert.Equal(t, SectionNumber{2, 1}, a)
	assert.Equal(t, SectionNumber{2, 2}, b)
	assert.Equal(t, SectionNumber{2}, parent)
	assert.Equal(t, 2, a.Depth())
}

func TestShiftSectionNumbers(t *testing.T) {
	links := []Link{
		{SectionNumber: SectionNumber{1}, NestedItems: []Link{
			{SectionNumber: SectionNumber{1, 1}},
		}},
		{SectionNumber: SectionNumber{2}},
	}

	shiftSectionNumbers(links, 0, 3)

	assert.Equal(t, SectionNumber{4}, links[0].SectionNumber)
	assert.Equal(t, SectionNumber{4, 1}, links[0].NestedItems[0].SectionNumber)
	assert.Equal(t, SectionNumber{5}, links[1].SectionNumber)
}

func sampleSummary() *Summary {
	return &Summary{
		Title:          "Book",
		PrefixChapters: []Chapter{{Name: "Intro", Location: "intro.md"}},
		NumberedChapters: []Link{
			{
				Chapter:       Chapter{Name: "One", Location: "one.md"},
				SectionNumber: SectionNumber{1},
				NestedItems: []Link{
					{Chapter: Chapter{Name: "Draft"}, SectionNumber: SectionNumber{1, 1}},
					{Chapter: Chapter{Name: "One B", Location: "sub/b.md"}, SectionNumber: SectionNumber{1, 2}},
				},
			},
			{Chapter: Chapter{Name: "Two", Location: "two.md"}, SectionNumber: SectionNumber{2}},
		},
		SuffixChapters: []Chapter{{Name: "Outro", Location: "/abs/outro.md"}},
	}
}

func TestSummary_ChaptersDocumentOrder(t *testing.T) {
	s := sampleSummary()

	var names []string
	err := s.Chapters(func(c *Chapter) error {
		names = append(names, c.Name)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro", "One", "Draft", "One B", "Two", "Outro"}, names)
}

func TestSummary_ChaptersStopsOnError(t *testing.T) {
	s := sampleSummary()
	stop := errors.New("stop")

	visited := 0
	err := s.Chapters(func(c *Chapter) error {
		visited++
		if c.Name == "Draft" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, visited)
}

func TestLink_Walk(t *testing.T) {
	s := sampleSummary()

	var numbers []string
	err := s.NumberedChapters[0].Walk(func(l *Link) error {
		numbers = append(numbers, l.SectionNumber.String())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"1.", "1.1.", "1.2."}, numbers)
}

func TestSummary_ResolveLocations(t *testing.T) {
	s := sampleSummary()
	root := filepath.Join("books", "guide")

	s.ResolveLocations(root)

	assert.Equal(t, filepath.Join(root, "intro.md"), s.PrefixChapters[0].Location)
	assert.Equal(t, "", s.NumberedChapters[0].NestedItems[0].Chapter.Location)
	assert.Equal(t, filepath.Join(root, "sub", "b.md"), s.NumberedChapters[0].NestedItems[1].Chapter.Location)
	assert.Equal(t, "/abs/outro.md", s.SuffixChapters[0].Location)
}

func TestSummary_MapChapters(t *testing.T) {
	s := sampleSummary()
	s.MapChapters(func(c *Chapter) {
		c.Name = "[" + c.Name + "]"
	})
	assert.Equal(t, "[Intro]", s.PrefixChapters[0].Name)
	assert.Equal(t, "[One B]", s.NumberedChapters[0].NestedItems[1].Chapter.Name)
	assert.Equal(t, "[Outro]", s.SuffixChapters[0].Name)
}

func TestSummary_WriteTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleSummary().WriteTree(&buf))

	want := "Book\n" +
		"├── Intro [intro.md]\n" +
		"├── 1. One [one.md]\n" +
		"│   ├── 1.1. Draft (draft)\n" +
		"│   └── 1.2. One B [sub/b.md]\n" +
		"├── 2. Two [two.md]\n" +
		"└── Outro [/abs/outro.md]\n"
	assert.Equal(t, want, buf.String())
}
