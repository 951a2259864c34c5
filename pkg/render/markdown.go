package render

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// FrontMatter is the optional YAML/TOML header of a chapter file.
type FrontMatter struct {
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
}

// Document is a converted chapter.
type Document struct {
	Meta    FrontMatter
	HTML    []byte
	PageToc PageToc
}

// Converter turns chapter markdown into HTML. It is safe for concurrent use.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter builds a converter with GFM, footnotes and generated heading
// ids. Raw HTML in chapters is passed through.
func NewConverter() *Converter {
	return &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert strips front matter from source, then renders the body and
// collects its page toc from the same AST.
func (c *Converter) Convert(source []byte) (*Document, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("%w: parse frontmatter: %w", utils.ErrMarkdownConversion, err)
	}

	doc := c.md.Parser().Parse(text.NewReader(body))

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, body, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", utils.ErrMarkdownConversion, err)
	}

	return &Document{
		Meta:    meta,
		HTML:    buf.Bytes(),
		PageToc: extractPageToc(doc, body),
	}, nil
}
