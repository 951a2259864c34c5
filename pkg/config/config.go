package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/xmark/pkg/content"
	"github.com/Sriram-PR/xmark/pkg/utils"
)

// DefaultFilename is the project configuration file looked up in the project dir.
const DefaultFilename = "xmark.yaml"

// BookLocation names one book of the project. In YAML it is either a bare
// string (name and location are the same) or a mapping.
type BookLocation struct {
	Name          string `yaml:"name"`
	Location      string `yaml:"location"`                 // Relative to the project dir
	CreateMissing *bool  `yaml:"create_missing,omitempty"` // Overrides output.html.create_missing
}

// UnmarshalYAML accepts both "- book-1" and "- {name: trpl, location: book/src}".
func (b *BookLocation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		b.Name = value.Value
		b.Location = value.Value
		return nil
	}

	type plain BookLocation
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*b = BookLocation(p)
	if b.Location == "" {
		b.Location = b.Name
	}
	return nil
}

// MarshalYAML writes the bare form back when nothing else is set.
func (b BookLocation) MarshalYAML() (interface{}, error) {
	if b.Name == b.Location && b.CreateMissing == nil {
		return b.Name, nil
	}
	type plain BookLocation
	return plain(b), nil
}

// HTMLConfig holds the options of the html output.
type HTMLConfig struct {
	SiteURL          string `yaml:"site_url,omitempty"`           // URL prefix every page lives under
	OutDir           string `yaml:"out_dir,omitempty"`            // Relative to the project dir unless absolute
	Templates        string `yaml:"templates,omitempty"`          // Dir with page.html / redirect.html overrides
	MaxParallelBooks int    `yaml:"max_parallel_books,omitempty"` // Books built at the same time
	CreateMissing    bool   `yaml:"create_missing,omitempty"`
	EnableManifest   bool   `yaml:"enable_manifest,omitempty"`
	ManifestFilename string `yaml:"manifest_filename,omitempty"`
	EnableStructure  bool   `yaml:"enable_structure,omitempty"` // Write a text tree of each book's output
}

// OutputConfig groups the output backends.
type OutputConfig struct {
	HTML HTMLConfig `yaml:"html"`
}

// AppConfig holds the project configuration.
type AppConfig struct {
	Books        []BookLocation `yaml:"books"`
	Output       OutputConfig   `yaml:"output"`
	BuildTimeout time.Duration  `yaml:"build_timeout,omitempty"` // 0 = no timeout
}

// Load reads and parses a configuration file. It does not validate.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading config '%s': %w", utils.ErrFilesystem, path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config '%s': %v", utils.ErrConfigValidation, path, err)
	}
	return &cfg, nil
}

// Dirs derives the build directories for a project rooted at projectDir.
func (c *AppConfig) Dirs(projectDir string) content.Dirs {
	outDir := c.Output.HTML.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(projectDir, filepath.FromSlash(outDir))
	}
	baseURL := c.Output.HTML.SiteURL
	if baseURL == "" {
		baseURL = "/"
	}
	return content.Dirs{
		BaseDir: filepath.Clean(projectDir),
		OutDir:  outDir,
		BaseURL: baseURL,
	}
}

// BookDir is the directory holding a book's SUMMARY.md.
func BookDir(projectDir string, book BookLocation) string {
	return filepath.Join(projectDir, filepath.FromSlash(book.Location))
}

// FindBook looks a book up by name.
func (c *AppConfig) FindBook(name string) (BookLocation, bool) {
	for _, b := range c.Books {
		if b.Name == name {
			return b, true
		}
	}
	return BookLocation{}, false
}

// GetEffectiveCreateMissing determines whether missing chapter files are
// created for a book. The book's setting wins over the global one.
func GetEffectiveCreateMissing(book BookLocation, appCfg AppConfig) bool {
	if book.CreateMissing != nil {
		return *book.CreateMissing
	}
	return appCfg.Output.HTML.CreateMissing
}

// GetEffectiveManifestFilename returns the manifest filename, falling back
// to a hardcoded default.
func GetEffectiveManifestFilename(appCfg AppConfig) string {
	if appCfg.Output.HTML.ManifestFilename != "" {
		return appCfg.Output.HTML.ManifestFilename
	}
	return "manifest.yaml"
}
