package render

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// LinkRewriter points links between chapter sources at the rendered pages.
// A link like "../intro.md#setup" written in a chapter becomes the intro
// page's URL plus "#setup".
type LinkRewriter struct {
	urls map[string]string // Cleaned input path -> page URL
	log  *logrus.Entry
}

// NewLinkRewriter creates a rewriter from a map of chapter input paths to
// page URLs.
func NewLinkRewriter(urls map[string]string, log *logrus.Entry) *LinkRewriter {
	cleaned := make(map[string]string, len(urls))
	for input, u := range urls {
		cleaned[filepath.Clean(input)] = u
	}
	return &LinkRewriter{urls: cleaned, log: log}
}

// Rewrite updates every relative ".md" href in fragment, resolving it
// against the directory of the chapter at input. Links to files that are
// not chapters of the book are left untouched. Returns the rewritten HTML
// and how many links changed.
func (lr *LinkRewriter) Rewrite(fragment []byte, input string) ([]byte, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(fragment))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: parse rendered html: %w", utils.ErrMarkdownConversion, err)
	}

	baseDir := filepath.Dir(input)
	rewritten := 0
	doc.Find("a[href]").Each(func(_ int, element *goquery.Selection) {
		href, _ := element.Attr("href")
		target, ok := lr.resolve(href, baseDir)
		if !ok {
			return
		}
		lr.log.Debugf("Rewriting link '%s' -> '%s'", href, target)
		element.SetAttr("href", target)
		rewritten++
	})

	if rewritten == 0 {
		return fragment, 0, nil
	}

	// goquery wraps fragments in html/head/body.
	out, err := doc.Find("body").Html()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: serialize rendered html: %w", utils.ErrMarkdownConversion, err)
	}
	return []byte(out), rewritten, nil
}

func (lr *LinkRewriter) resolve(href, baseDir string) (string, bool) {
	linkURL, err := url.Parse(href)
	if err != nil {
		lr.log.Debugf("Skipping unparseable link '%s': %v", href, err)
		return "", false
	}
	if linkURL.Scheme != "" || linkURL.Host != "" || linkURL.Path == "" {
		return "", false
	}
	if strings.HasPrefix(linkURL.Path, "/") || !strings.HasSuffix(strings.ToLower(linkURL.Path), ".md") {
		return "", false
	}

	source := filepath.Join(baseDir, filepath.FromSlash(linkURL.Path))
	target, ok := lr.urls[source]
	if !ok {
		lr.log.Debugf("Link '%s' does not point at a chapter of this book", href)
		return "", false
	}
	if linkURL.Fragment != "" {
		target += "#" + linkURL.Fragment
	}
	return target, true
}
