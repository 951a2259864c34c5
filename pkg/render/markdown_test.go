package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

func TestConverter_Convert(t *testing.T) {
	source := []byte(`---
title: Control Flow
description: Branches and loops
---
# Control Flow

## If
### If else
### As an expression

## Match

| a | b |
|---|---|
| 1 | 2 |

~~gone~~
`)

	doc, err := NewConverter().Convert(source)
	require.NoError(t, err)

	assert.Equal(t, "Control Flow", doc.Meta.Title)
	assert.Equal(t, "Branches and loops", doc.Meta.Description)

	html := string(doc.HTML)
	assert.NotContains(t, html, "description:")
	assert.Contains(t, html, `<h2 id="if">If</h2>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<del>gone</del>")

	assert.Equal(t, PageToc{
		{Name: "If", ID: "if", Children: []TocEntry{
			{Name: "If else", ID: "if-else"},
			{Name: "As an expression", ID: "as-an-expression"},
		}},
		{Name: "Match", ID: "match"},
	}, doc.PageToc)
}

func TestConverter_NoFrontMatter(t *testing.T) {
	doc, err := NewConverter().Convert([]byte("# Title\n\nBody <span>raw</span>\n"))
	require.NoError(t, err)

	assert.Empty(t, doc.Meta.Title)
	assert.Contains(t, string(doc.HTML), "<span>raw</span>")
	assert.Empty(t, doc.PageToc)
}

func TestConverter_BadFrontMatter(t *testing.T) {
	_, err := NewConverter().Convert([]byte("---\ntitle: [unclosed\n---\n# T\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrMarkdownConversion)
}

func TestExtractPageToc_StyledAndOrphanHeadings(t *testing.T) {
	doc, err := NewConverter().Convert([]byte("### Orphan\n\n## The `match` **keyword**\n\n#### Too deep\n"))
	require.NoError(t, err)

	require.Len(t, doc.PageToc, 2)
	assert.Equal(t, "Orphan", doc.PageToc[0].Name)
	assert.Equal(t, "The match keyword", doc.PageToc[1].Name)
	assert.Empty(t, doc.PageToc[1].Children)
}
