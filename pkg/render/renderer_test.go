package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/xmark/pkg/content"
	"github.com/Sriram-PR/xmark/pkg/summary"
	"github.com/Sriram-PR/xmark/pkg/utils"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	}
}

// setupBook writes a small book under a temp project and returns the
// collected book plus its dirs.
func setupBook(t *testing.T) (*Book, content.Dirs) {
	t.Helper()
	project := t.TempDir()
	writeFiles(t, project, map[string]string{
		"guide/intro.md":      "# Intro\n\nSee [the details](ch/details.md#usage).\n\n## Setup\n",
		"guide/ch/README.md":  "# Chapter\n",
		"guide/ch/details.md": "---\ntitle: All The Details\n---\n# Details\n\n## Usage\n### Flags\n",
	})

	s, err := summary.Parse(`# Guide

[Intro](intro.md)

- [Chapter](ch/README.md)
  - [Details](ch/details.md)
- [Planned]()
`)
	require.NoError(t, err)
	bookDir := filepath.Join(project, "guide")
	s.ResolveLocations(bookDir)

	dirs := content.Dirs{BaseDir: project, OutDir: filepath.Join(project, "_out", "html"), BaseURL: "/"}
	pages, redirects, err := content.Collect(s, bookDir, dirs, testLogger())
	require.NoError(t, err)

	return &Book{Summary: s, Pages: pages, Redirects: redirects}, dirs
}

func TestRenderer_RenderBook(t *testing.T) {
	book, dirs := setupBook(t)

	r, err := New(Options{Dirs: dirs}, testLogger())
	require.NoError(t, err)

	results, err := r.RenderBook(context.Background(), book)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.NoError(t, res.Err, res.Page.Name)
		assert.Len(t, res.SourceHash, 64)
		assert.False(t, res.RenderedAt.IsZero())
	}
	assert.Equal(t, 1, results[0].Links)

	intro, err := os.ReadFile(filepath.Join(dirs.OutDir, "guide", "intro", "index.html"))
	require.NoError(t, err)
	html := string(intro)

	assert.Contains(t, html, "<title>Intro - Guide</title>")
	assert.Contains(t, html, `href="/guide/ch/details#usage"`)
	assert.Contains(t, html, `<a rel="next" href="/guide/ch"`)
	assert.NotContains(t, html, `rel="prev"`)
	assert.Contains(t, html, `<a href="#setup">Setup</a>`)
	assert.Contains(t, html, `<span class="draft">Planned</span>`)
	assert.Contains(t, html, `<strong aria-hidden="true">1.1.</strong>`)
	assert.Contains(t, html, `class="active">Intro</a>`)

	details, err := os.ReadFile(filepath.Join(dirs.OutDir, "guide", "ch", "details", "index.html"))
	require.NoError(t, err)
	html = string(details)
	assert.Contains(t, html, "<title>All The Details - Guide</title>")
	assert.Contains(t, html, `<a href="/guide">Guide</a> / <a href="/guide/ch">Chapter</a> / <a href="/guide/ch/details">Details</a>`)
	assert.Contains(t, html, `<a href="#flags">Flags</a>`)
	assert.NotContains(t, html, `rel="next"`)

	// No README at the book root, so the index redirects to the first page.
	redirect, err := os.ReadFile(filepath.Join(dirs.OutDir, "guide", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(redirect), `URL=/guide/intro`)
}

func TestRenderer_MissingSourceFailsOnlyThatPage(t *testing.T) {
	book, dirs := setupBook(t)
	require.NoError(t, os.Remove(book.Pages[1].Input))

	r, err := New(Options{Dirs: dirs}, testLogger())
	require.NoError(t, err)

	results, err := r.RenderBook(context.Background(), book)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "Filesystem_NotExist", utils.CategorizeError(results[1].Err))
	assert.NoError(t, results[2].Err)
}

func TestRenderer_CancelledContext(t *testing.T) {
	book, dirs := setupBook(t)
	r, err := New(Options{Dirs: dirs}, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.RenderBook(ctx, book)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRenderer_TemplateOverride(t *testing.T) {
	book, dirs := setupBook(t)
	themeDir := t.TempDir()
	writeFiles(t, themeDir, map[string]string{
		"page.html": `<h1>{{.Title}}</h1>{{template "sidebar" .Sidebar}}{{.Content}}`,
	})

	r, err := New(Options{Dirs: dirs, TemplatesDir: themeDir}, testLogger())
	require.NoError(t, err)

	_, err = r.RenderBook(context.Background(), book)
	require.NoError(t, err)

	out, err := os.ReadFile(book.Pages[0].Output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "<h1>Intro</h1>"))

	// The redirect template was not overridden.
	redirect, err := os.ReadFile(book.Redirects[0].From)
	require.NoError(t, err)
	assert.Contains(t, string(redirect), "Redirecting")
}

func TestRenderer_BrokenTemplateOverride(t *testing.T) {
	themeDir := t.TempDir()
	writeFiles(t, themeDir, map[string]string{"redirect.html": "{{.URL"})

	_, err := New(Options{TemplatesDir: themeDir}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTemplate)
}

func TestBuildSidebar(t *testing.T) {
	s, err := summary.Parse("# B\n\n[P](p.md)\n\n- [A](a.md)\n  - [Draft]()\n")
	require.NoError(t, err)

	items := buildSidebar(s, map[string]string{"p.md": "/p", "a.md": "/a"}, "/a")
	require.Len(t, items, 2)

	assert.Equal(t, SidebarItem{Name: "P", URL: "/p"}, items[0])
	assert.Equal(t, "1.", items[1].Number)
	assert.True(t, items[1].Active)
	require.Len(t, items[1].Children, 1)
	assert.Equal(t, "1.1.", items[1].Children[0].Number)
	assert.Equal(t, "", items[1].Children[0].URL)
	assert.False(t, items[1].Children[0].Active)
}
