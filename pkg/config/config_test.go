package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestBookLocation_UnmarshalBothForms(t *testing.T) {
	input := `
books:
  - book-1
  - name: trpl
    location: book/src/
  - name: only-name
  - name: stubs
    location: drafts
    create_missing: true
`
	var cfg AppConfig
	require.NoError(t, yaml.Unmarshal([]byte(input), &cfg))

	assert.Equal(t, []BookLocation{
		{Name: "book-1", Location: "book-1"},
		{Name: "trpl", Location: "book/src/"},
		{Name: "only-name", Location: "only-name"},
		{Name: "stubs", Location: "drafts", CreateMissing: boolPtr(true)},
	}, cfg.Books)
}

func TestBookLocation_MarshalBareForm(t *testing.T) {
	cfg := AppConfig{Books: []BookLocation{
		{Name: "book-1", Location: "book-1"},
		{Name: "trpl", Location: "book/src"},
	}}
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	raw := string(data)
	assert.Contains(t, raw, "- book-1\n")
	assert.Contains(t, raw, "name: trpl")
	assert.Contains(t, raw, "location: book/src")

	var back AppConfig
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg.Books, back.Books)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(`
books: [guide]
output:
  html:
    site_url: /docs/
    max_parallel_books: 2
build_timeout: 30s
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "guide", cfg.Books[0].Name)
	assert.Equal(t, "/docs/", cfg.Output.HTML.SiteURL)
	assert.Equal(t, 2, cfg.Output.HTML.MaxParallelBooks)
	assert.Equal(t, "30s", cfg.BuildTimeout.String())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, utils.ErrFilesystem)
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("books: {not: [a list"), 0644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, utils.ErrConfigValidation)
}

func TestAppConfig_Dirs(t *testing.T) {
	cfg := AppConfig{Output: OutputConfig{HTML: HTMLConfig{OutDir: "_out/html", SiteURL: "/books/"}}}
	dirs := cfg.Dirs("/proj/")

	assert.Equal(t, "/proj", dirs.BaseDir)
	assert.Equal(t, "/proj/_out/html", dirs.OutDir)
	assert.Equal(t, "/books/", dirs.BaseURL)

	cfg.Output.HTML.OutDir = "/var/www"
	cfg.Output.HTML.SiteURL = ""
	dirs = cfg.Dirs("/proj")
	assert.Equal(t, "/var/www", dirs.OutDir)
	assert.Equal(t, "/", dirs.BaseURL)
}

func TestBookDirAndFindBook(t *testing.T) {
	cfg := AppConfig{Books: []BookLocation{{Name: "trpl", Location: "book/src"}}}

	b, ok := cfg.FindBook("trpl")
	require.True(t, ok)
	assert.Equal(t, "/proj/book/src", BookDir("/proj", b))

	_, ok = cfg.FindBook("nope")
	assert.False(t, ok)
}

func TestGetEffectiveCreateMissing(t *testing.T) {
	tests := []struct {
		name     string
		book     BookLocation
		appCfg   AppConfig
		expected bool
	}{
		{
			name:     "book enabled overrides global disabled",
			book:     BookLocation{CreateMissing: boolPtr(true)},
			appCfg:   AppConfig{},
			expected: true,
		},
		{
			name:     "book disabled overrides global enabled",
			book:     BookLocation{CreateMissing: boolPtr(false)},
			appCfg:   AppConfig{Output: OutputConfig{HTML: HTMLConfig{CreateMissing: true}}},
			expected: false,
		},
		{
			name:     "book nil uses global",
			book:     BookLocation{},
			appCfg:   AppConfig{Output: OutputConfig{HTML: HTMLConfig{CreateMissing: true}}},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetEffectiveCreateMissing(tt.book, tt.appCfg))
		})
	}
}

func TestGetEffectiveManifestFilename(t *testing.T) {
	assert.Equal(t, "manifest.yaml", GetEffectiveManifestFilename(AppConfig{}))
	cfg := AppConfig{Output: OutputConfig{HTML: HTMLConfig{ManifestFilename: "build.yaml"}}}
	assert.Equal(t, "build.yaml", GetEffectiveManifestFilename(cfg))
}
