package config

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	if len(c.Books) == 0 {
		return nil, fmt.Errorf("%w: no books configured", utils.ErrConfigValidation)
	}

	names := make(map[string]bool, len(c.Books))
	locations := make(map[string]string, len(c.Books))
	for i := range c.Books {
		bookWarnings, err := c.Books[i].Validate()
		if err != nil {
			return nil, utils.WrapErrorf(err, "book #%d", i+1)
		}
		warnings = append(warnings, bookWarnings...)

		b := c.Books[i]
		if names[b.Name] {
			return nil, fmt.Errorf("%w: duplicate book name '%s'", utils.ErrConfigValidation, b.Name)
		}
		names[b.Name] = true

		if other, ok := locations[b.Location]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"books '%s' and '%s' share location '%s'; their outputs will collide", other, b.Name, b.Location))
		}
		locations[b.Location] = b.Name
	}

	warnings = append(warnings, c.Output.HTML.validate()...)

	if c.BuildTimeout < 0 {
		warnings = append(warnings, "build_timeout cannot be negative, disabling timeout")
		c.BuildTimeout = 0
	}

	return warnings, nil
}

// Validate checks a single book entry and normalizes its location to a
// clean, slash separated path.
func (b *BookLocation) Validate() (warnings []string, err error) {
	if b.Name == "" {
		return nil, fmt.Errorf("%w: book needs a name", utils.ErrConfigValidation)
	}
	if b.Location == "" {
		b.Location = b.Name
	}

	loc := filepath.ToSlash(b.Location)
	if path.IsAbs(loc) || filepath.IsAbs(b.Location) {
		return nil, fmt.Errorf("%w: book '%s' location '%s' must be relative to the project dir",
			utils.ErrConfigValidation, b.Name, b.Location)
	}
	clean := path.Clean(loc)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("%w: book '%s' location '%s' escapes the project dir",
			utils.ErrConfigValidation, b.Name, b.Location)
	}
	if clean != loc && clean+"/" != loc {
		warnings = append(warnings, fmt.Sprintf("book '%s' location '%s' normalized to '%s'", b.Name, b.Location, clean))
	}
	b.Location = clean
	return warnings, nil
}

func (h *HTMLConfig) validate() (warnings []string) {
	if h.SiteURL == "" {
		h.SiteURL = "/"
	} else if u, err := url.Parse(h.SiteURL); err != nil {
		warnings = append(warnings, fmt.Sprintf("site_url '%s' is not a valid URL (%v), defaulting to '/'", h.SiteURL, err))
		h.SiteURL = "/"
	} else if u.Scheme == "" && !strings.HasPrefix(h.SiteURL, "/") {
		warnings = append(warnings, fmt.Sprintf("site_url '%s' should start with '/', using '/%s'", h.SiteURL, h.SiteURL))
		h.SiteURL = "/" + h.SiteURL
	}

	if h.OutDir == "" {
		h.OutDir = "_out/html"
	}

	if h.MaxParallelBooks <= 0 {
		if h.MaxParallelBooks < 0 {
			warnings = append(warnings, "max_parallel_books should be > 0, defaulting to 4")
		}
		h.MaxParallelBooks = 4
	}

	if h.EnableManifest && h.ManifestFilename == "" {
		h.ManifestFilename = "manifest.yaml"
	}
	if h.ManifestFilename != "" && filepath.Base(h.ManifestFilename) != h.ManifestFilename {
		warnings = append(warnings, fmt.Sprintf(
			"manifest_filename '%s' must be a plain file name, using '%s'", h.ManifestFilename, filepath.Base(h.ManifestFilename)))
		h.ManifestFilename = filepath.Base(h.ManifestFilename)
	}
	return warnings
}
