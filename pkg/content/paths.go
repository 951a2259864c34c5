package content

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const readmeName = "README.md"

// Dirs holds the directories and URL prefix a build works with.
type Dirs struct {
	BaseDir string // Project root; every book lives below it
	OutDir  string // Root of the generated site
	BaseURL string // Site-relative URL prefix, "/" when empty
}

// relativeTo strips root from p. Paths outside root fail with a PathError.
func relativeTo(op, p, root string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &PathError{Op: op, Path: p, Root: root}
	}
	if !utf8.ValidString(rel) {
		return "", &EncodingError{Path: p}
	}
	return rel, nil
}

// OutputLocation maps a markdown file below baseDir to its html file below
// outDir. "dir/README.md" becomes "dir/index.html"; any other "dir/name.md"
// becomes "dir/name/index.html".
func OutputLocation(input, outDir, baseDir string) (string, error) {
	rel, err := relativeTo("output location", input, baseDir)
	if err != nil {
		return "", err
	}

	dir, file := filepath.Split(rel)
	if file == readmeName {
		return filepath.Join(outDir, dir, "index.html"), nil
	}
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	return filepath.Join(outDir, dir, stem, "index.html"), nil
}

// PageURL returns the site URL for an output file: the path below OutDir
// joined onto BaseURL, without the trailing "index.html".
func PageURL(output string, dirs Dirs) (string, error) {
	rel, err := relativeTo("page url", output, dirs.OutDir)
	if err != nil {
		return "", err
	}
	return joinURL(dirs.BaseURL, path.Dir(filepath.ToSlash(rel))), nil
}

// joinURL joins elem onto base. A base with a scheme keeps its scheme and
// host and only has its path extended.
func joinURL(base, elem string) string {
	if base == "" {
		base = "/"
	}
	if u, err := url.Parse(base); err == nil && u.Scheme != "" && u.Host != "" {
		u.Path = path.Join("/", u.Path, elem)
		return u.String()
	}
	return path.Join(base, elem)
}
