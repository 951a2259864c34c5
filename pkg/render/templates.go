package render

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

const (
	pageTemplate     = "page.html"
	redirectTemplate = "redirect.html"
)

// loadTemplates parses the built-in templates, then lets files of the same
// name in dir replace them. An empty dir means built-ins only.
func loadTemplates(dir string) (*template.Template, error) {
	tmpl, err := template.New("xmark").ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%w: built-in templates: %w", utils.ErrTemplate, err)
	}
	if dir == "" {
		return tmpl, nil
	}

	for _, name := range []string{pageTemplate, redirectTemplate} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading template '%s': %w", utils.ErrFilesystem, path, err)
		}
		if _, err := tmpl.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("%w: parsing template '%s': %w", utils.ErrTemplate, path, err)
		}
	}
	return tmpl, nil
}
