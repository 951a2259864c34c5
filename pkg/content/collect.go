// Package content flattens a parsed summary into the ordered list of pages
// a renderer writes, and works out where each page lives on disk and on
// the site.
package content

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/models"
	"github.com/Sriram-PR/xmark/pkg/summary"
)

type tokenKind int

const (
	tokenChapter tokenKind = iota
	tokenStartSection
	tokenEndSection
)

// token is one step of the flattened summary. Nesting survives as explicit
// start/end markers around a chapter's children:
//
//	Foo            Chapter(Foo)
//	Bar            Chapter(Bar)
//	  Baz          StartSection Chapter(Baz) EndSection
type token struct {
	kind    tokenKind
	chapter *summary.Chapter
}

// flatten lays the summary out in document order: prefix chapters, the
// numbered tree depth first, then suffix chapters.
func flatten(s *summary.Summary) []token {
	var tokens []token
	for i := range s.PrefixChapters {
		tokens = append(tokens, token{kind: tokenChapter, chapter: &s.PrefixChapters[i]})
	}

	type frame struct {
		links []summary.Link
		next  int
	}
	stack := []frame{{links: s.NumberedChapters}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.links) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				tokens = append(tokens, token{kind: tokenEndSection})
			}
			continue
		}

		link := &top.links[top.next]
		top.next++
		tokens = append(tokens, token{kind: tokenChapter, chapter: &link.Chapter})
		if len(link.NestedItems) > 0 {
			tokens = append(tokens, token{kind: tokenStartSection})
			stack = append(stack, frame{links: link.NestedItems})
		}
	}

	for i := range s.SuffixChapters {
		tokens = append(tokens, token{kind: tokenChapter, chapter: &s.SuffixChapters[i]})
	}
	return tokens
}

// Collect flattens s into renderable pages and the redirects the book needs.
//
// Chapter locations must already be resolved below dirs.BaseDir (see
// summary.ResolveLocations); bookLocation is the book's root directory.
// Drafts are skipped. When no page is written to the book's root index, a
// redirect from it to the first page is returned. A book without pages gets
// no redirect.
func Collect(s *summary.Summary, bookLocation string, dirs Dirs, log *logrus.Entry) ([]models.Page, []models.Redirect, error) {
	if log == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		log = logrus.NewEntry(logger)
	}
	log = log.WithField("component", "collect")

	rootRel, err := relativeTo("book location", bookLocation, dirs.BaseDir)
	if err != nil {
		return nil, nil, err
	}
	hierarchy := []models.Breadcrumb{{
		Name: s.Title,
		URL:  joinURL(dirs.BaseURL, filepath.ToSlash(rootRel)),
	}}

	indexOutput, err := OutputLocation(filepath.Join(bookLocation, readmeName), dirs.OutDir, dirs.BaseDir)
	if err != nil {
		return nil, nil, err
	}
	needsRedirect := true

	tokens := flatten(s)
	pages := make([]models.Page, 0, len(tokens))
	outputs := make(map[string]string, len(tokens)) // output -> input

	// Crumb of the chapter just seen, pushed when its section opens.
	var last models.Breadcrumb

	for _, tok := range tokens {
		switch tok.kind {
		case tokenChapter:
			chapter := tok.chapter
			if chapter.IsDraft() {
				log.Debugf("Skipping draft chapter '%s'", chapter.Name)
				last = models.Breadcrumb{Name: chapter.Name}
				continue
			}

			output, err := OutputLocation(chapter.Location, dirs.OutDir, dirs.BaseDir)
			if err != nil {
				return nil, nil, fmt.Errorf("chapter '%s': %w", chapter.Name, err)
			}
			if first, dup := outputs[output]; dup {
				return nil, nil, &PathError{Op: OpDuplicateOutput, Path: chapter.Location, Root: dirs.OutDir, Conflict: first}
			}
			outputs[output] = chapter.Location
			if output == indexOutput {
				needsRedirect = false
			}

			url, err := PageURL(output, dirs)
			if err != nil {
				return nil, nil, fmt.Errorf("chapter '%s': %w", chapter.Name, err)
			}
			last = models.Breadcrumb{Name: chapter.Name, URL: url}

			crumbs := make([]models.Breadcrumb, len(hierarchy), len(hierarchy)+1)
			copy(crumbs, hierarchy)
			pages = append(pages, models.Page{
				Name:      chapter.Name,
				Input:     chapter.Location,
				Output:    output,
				Hierarchy: append(crumbs, last),
			})

		case tokenStartSection:
			hierarchy = append(hierarchy, last)

		case tokenEndSection:
			hierarchy = hierarchy[:len(hierarchy)-1]
		}
	}

	for i := 0; i+1 < len(pages); i++ {
		pages[i].Next = pages[i+1].URL()
		pages[i+1].Prev = pages[i].URL()
	}

	var redirects []models.Redirect
	if needsRedirect {
		if len(pages) == 0 {
			log.Warnf("Book '%s' has no pages; not generating an index redirect", s.Title)
		} else {
			redirects = append(redirects, models.Redirect{From: indexOutput, To: pages[0].URL()})
		}
	}

	log.Debugf("Collected %d pages and %d redirects for '%s'", len(pages), len(redirects), s.Title)
	return pages, redirects, nil
}
