// Package render writes a collected book to disk as HTML: one file per
// page, redirect stubs, and the sidebar and page tables of contents.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/content"
	"github.com/Sriram-PR/xmark/pkg/models"
	"github.com/Sriram-PR/xmark/pkg/summary"
	"github.com/Sriram-PR/xmark/pkg/utils"
)

// Options configures a Renderer.
type Options struct {
	Dirs         content.Dirs
	TemplatesDir string // Optional page.html / redirect.html overrides
	Language     string // html lang attribute, "en" when empty
}

// Book is everything needed to render one book.
type Book struct {
	Summary   *summary.Summary
	Pages     []models.Page
	Redirects []models.Redirect
}

// PageResult is the outcome of rendering one page. Err is set when the page
// could not be rendered; other pages are unaffected.
type PageResult struct {
	Page       models.Page
	SourceHash string
	Links      int // Chapter links rewritten
	RenderedAt time.Time
	Err        error
}

// Renderer renders books. It is safe for concurrent use by multiple books.
type Renderer struct {
	opts      Options
	templates *template.Template
	converter *Converter
	log       *logrus.Entry
}

type pageData struct {
	Language    string
	BookTitle   string
	BookURL     string
	Title       string
	Description string
	PathToRoot  string
	Content     template.HTML
	Hierarchy   []models.Breadcrumb
	PageToc     PageToc
	Sidebar     []SidebarItem
	Prev        string
	Next        string
}

type redirectData struct {
	URL string
}

// New creates a Renderer, loading templates up front so that template
// errors surface before any book is built.
func New(opts Options, log *logrus.Entry) (*Renderer, error) {
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.Dirs.BaseURL == "" {
		opts.Dirs.BaseURL = "/"
	}
	tmpl, err := loadTemplates(opts.TemplatesDir)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		opts:      opts,
		templates: tmpl,
		converter: NewConverter(),
		log:       log.WithField("component", "render"),
	}, nil
}

// RenderBook writes every page and redirect of book. Page failures are
// reported per page in the results; a redirect that cannot be written, or a
// cancelled context, stops the book.
func (r *Renderer) RenderBook(ctx context.Context, book *Book) ([]PageResult, error) {
	bookLog := r.log.WithField("book", book.Summary.Title)

	urls := make(map[string]string, len(book.Pages))
	for _, p := range book.Pages {
		urls[p.Input] = p.URL()
	}
	links := NewLinkRewriter(urls, bookLog)

	bookURL := r.opts.Dirs.BaseURL
	if len(book.Pages) > 0 && len(book.Pages[0].Hierarchy) > 0 {
		bookURL = book.Pages[0].Hierarchy[0].URL
	}

	results := make([]PageResult, 0, len(book.Pages))
	for _, page := range book.Pages {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := r.renderPage(book, page, bookURL, urls, links, bookLog)
		if res.Err != nil {
			bookLog.WithField("page", page.Name).Errorf("Failed to render page [%s]: %v", utils.CategorizeError(res.Err), res.Err)
		}
		results = append(results, res)
	}

	for _, redirect := range book.Redirects {
		if err := r.WriteRedirect(redirect); err != nil {
			return results, err
		}
		bookLog.Debugf("Wrote redirect %s -> %s", redirect.From, redirect.To)
	}
	return results, nil
}

func (r *Renderer) renderPage(book *Book, page models.Page, bookURL string, urls map[string]string, links *LinkRewriter, log *logrus.Entry) PageResult {
	res := PageResult{Page: page}

	source, err := os.ReadFile(page.Input)
	if err != nil {
		res.Err = fmt.Errorf("%w: reading '%s': %w", utils.ErrFilesystem, page.Input, err)
		return res
	}
	res.SourceHash = utils.CalculateBytesSHA256(source)

	doc, err := r.converter.Convert(source)
	if err != nil {
		res.Err = utils.WrapErrorf(err, "page '%s'", page.Name)
		return res
	}

	body, rewritten, err := links.Rewrite(doc.HTML, page.Input)
	if err != nil {
		res.Err = utils.WrapErrorf(err, "page '%s'", page.Name)
		return res
	}
	res.Links = rewritten

	title := page.Name
	if doc.Meta.Title != "" {
		title = doc.Meta.Title
	}

	data := pageData{
		Language:    r.opts.Language,
		BookTitle:   book.Summary.Title,
		BookURL:     bookURL,
		Title:       title,
		Description: doc.Meta.Description,
		PathToRoot:  r.opts.Dirs.BaseURL,
		Content:     template.HTML(body),
		Hierarchy:   page.Hierarchy,
		PageToc:     doc.PageToc,
		Sidebar:     buildSidebar(book.Summary, urls, page.URL()),
		Prev:        page.Prev,
		Next:        page.Next,
	}

	if err := r.writeTemplate(page.Output, pageTemplate, data); err != nil {
		res.Err = utils.WrapErrorf(err, "page '%s'", page.Name)
		return res
	}
	res.RenderedAt = time.Now()
	log.Debugf("Rendered %s -> %s", page.Input, page.Output)
	return res
}

// WriteRedirect writes a meta-refresh stub at redirect.From.
func (r *Renderer) WriteRedirect(redirect models.Redirect) error {
	return r.writeTemplate(redirect.From, redirectTemplate, redirectData{URL: redirect.To})
}

// writeTemplate executes the named template into memory, then writes path.
func (r *Renderer) writeTemplate(path, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("%w: executing '%s' for '%s': %w", utils.ErrTemplate, name, path, err)
	}
	return writeFile(path, &buf)
}

func writeFile(path string, content io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating directory for '%s': %w", utils.ErrFilesystem, path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating '%s': %w", utils.ErrFilesystem, path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, content); err != nil {
		return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, path, err)
	}
	return nil
}
