package watch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// Fingerprint hashes every markdown file under bookDir, SUMMARY.md included,
// into a single digest. Any edit, addition or removal changes it.
func Fingerprint(bookDir string) (string, error) {
	var files []string
	err := filepath.WalkDir(bookDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != bookDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), ".md") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: walk '%s': %v", utils.ErrFilesystem, bookDir, err)
	}
	sort.Strings(files)

	var b strings.Builder
	for _, f := range files {
		sum, err := utils.CalculateFileSHA256(f)
		if err != nil {
			return "", fmt.Errorf("%w: hash '%s': %v", utils.ErrFilesystem, f, err)
		}
		rel, _ := filepath.Rel(bookDir, f)
		b.WriteString(filepath.ToSlash(rel))
		b.WriteByte(':')
		b.WriteString(sum)
		b.WriteByte('\n')
	}
	return utils.CalculateBytesSHA256([]byte(b.String())), nil
}
