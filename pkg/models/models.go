package models

import "time"

// Breadcrumb is one step of a page's hierarchy, from the book root down to
// the page itself.
type Breadcrumb struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"` // Empty for draft parents, which have no page
}

// Page is a single renderable chapter after the summary tree has been
// flattened. Next and Prev are empty at the ends of the chain.
type Page struct {
	Name      string       `json:"name" yaml:"name"`
	Input     string       `json:"input" yaml:"input"`   // Source markdown path
	Output    string       `json:"output" yaml:"output"` // Destination html path
	Hierarchy []Breadcrumb `json:"hierarchy" yaml:"hierarchy"`
	Next      string       `json:"next,omitempty" yaml:"next,omitempty"`
	Prev      string       `json:"prev,omitempty" yaml:"prev,omitempty"`
}

// URL is the page's own site URL, the last breadcrumb.
func (p Page) URL() string {
	if len(p.Hierarchy) == 0 {
		return ""
	}
	return p.Hierarchy[len(p.Hierarchy)-1].URL
}

// Redirect forwards a generated output file to another URL.
type Redirect struct {
	From string `json:"from" yaml:"from"` // Output path of the stub file
	To   string `json:"to" yaml:"to"`     // Target URL
}

// BookManifest records the result of building one book. Written as
// manifest.yaml into the book's output directory.
type BookManifest struct {
	BuildID            string         `yaml:"build_id"`
	Book               string         `yaml:"book"`
	Title              string         `yaml:"title"`
	Location           string         `yaml:"location"` // Relative to the project dir
	Status             BookStatus     `yaml:"status"`
	ErrorType          string         `yaml:"error_type,omitempty"`
	BuildStartTime     time.Time      `yaml:"build_start_time"`
	BuildEndTime       time.Time      `yaml:"build_end_time"`
	TotalPagesRendered int            `yaml:"total_pages_rendered"`
	Pages              []PageManifest `yaml:"pages"`
	Redirects          []Redirect     `yaml:"redirects,omitempty"`
}

// PageManifest holds build metadata for a single page.
type PageManifest struct {
	Name       string     `yaml:"name"`
	Source     string     `yaml:"source"` // Relative to the project dir
	Output     string     `yaml:"output"` // Relative to the output dir
	URL        string     `yaml:"url"`
	Status     PageStatus `yaml:"status"`
	ErrorType  string     `yaml:"error_type,omitempty"`
	SourceHash string     `yaml:"source_hash,omitempty"` // SHA256 hex of the markdown source
	RenderedAt time.Time  `yaml:"rendered_at,omitempty"`
}
