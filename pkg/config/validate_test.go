package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

func TestAppConfig_Validate_Defaults(t *testing.T) {
	cfg := AppConfig{Books: []BookLocation{{Name: "guide", Location: "guide"}}}

	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "/", cfg.Output.HTML.SiteURL)
	assert.Equal(t, "_out/html", cfg.Output.HTML.OutDir)
	assert.Equal(t, 4, cfg.Output.HTML.MaxParallelBooks)
	assert.Equal(t, "", cfg.Output.HTML.ManifestFilename)
}

func TestAppConfig_Validate_Warnings(t *testing.T) {
	cfg := AppConfig{
		Books: []BookLocation{
			{Name: "a", Location: "./shared"},
			{Name: "b", Location: "shared"},
		},
		Output: OutputConfig{HTML: HTMLConfig{
			SiteURL:          "docs/",
			MaxParallelBooks: -1,
			EnableManifest:   true,
		}},
		BuildTimeout: -time.Second,
	}

	warnings, err := cfg.Validate()
	require.NoError(t, err)

	// normalized location, shared location, site_url, max_parallel_books, build_timeout
	assert.Len(t, warnings, 5)
	assert.Equal(t, "shared", cfg.Books[0].Location)
	assert.Equal(t, "/docs/", cfg.Output.HTML.SiteURL)
	assert.Equal(t, 4, cfg.Output.HTML.MaxParallelBooks)
	assert.Equal(t, "manifest.yaml", cfg.Output.HTML.ManifestFilename)
	assert.Equal(t, time.Duration(0), cfg.BuildTimeout)
}

func TestAppConfig_Validate_AbsoluteSiteURL(t *testing.T) {
	cfg := AppConfig{
		Books:  []BookLocation{{Name: "a", Location: "a"}},
		Output: OutputConfig{HTML: HTMLConfig{SiteURL: "https://example.com/books/"}},
	}
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "https://example.com/books/", cfg.Output.HTML.SiteURL)
}

func TestAppConfig_Validate_Fatal(t *testing.T) {
	tests := []struct {
		name  string
		books []BookLocation
		msg   string
	}{
		{"no books", nil, "no books configured"},
		{"empty name", []BookLocation{{Location: "x"}}, "book needs a name"},
		{"absolute location", []BookLocation{{Name: "a", Location: "/etc"}}, "must be relative"},
		{"escaping location", []BookLocation{{Name: "a", Location: "../outside"}}, "escapes the project dir"},
		{"duplicate names", []BookLocation{{Name: "a", Location: "x"}, {Name: "a", Location: "y"}}, "duplicate book name 'a'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := AppConfig{Books: tt.books}
			_, err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, utils.ErrConfigValidation)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Equal(t, "Config_Validation", utils.CategorizeError(err))
		})
	}
}

func TestBookLocation_Validate_DefaultsLocation(t *testing.T) {
	b := BookLocation{Name: "guide"}
	warnings, err := b.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "guide", b.Location)
}

func TestBookLocation_Validate_TrailingSlash(t *testing.T) {
	b := BookLocation{Name: "trpl", Location: "book/src/"}
	warnings, err := b.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "book/src", b.Location)
}

func TestHTMLConfig_ManifestFilenameMustBePlain(t *testing.T) {
	h := HTMLConfig{ManifestFilename: "sub/manifest.yaml"}
	warnings := h.validate()
	assert.Len(t, warnings, 1)
	assert.Equal(t, "manifest.yaml", h.ManifestFilename)
}
