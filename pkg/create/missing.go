// Package create writes stub markdown files for chapters listed in a
// summary whose files do not exist yet.
package create

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/summary"
	"github.com/Sriram-PR/xmark/pkg/utils"
)

// Missing creates "# <name>" stubs for every chapter whose location does not
// exist. Relative locations are taken from srcDir. Drafts have no location
// and are left alone. Returns the paths it created in document order.
func Missing(srcDir string, s *summary.Summary, log *logrus.Entry) ([]string, error) {
	log = log.WithField("component", "create")

	var created []string
	err := s.Chapters(func(c *summary.Chapter) error {
		if c.IsDraft() {
			return nil
		}

		filename := c.Location
		if !filepath.IsAbs(filename) {
			filename = filepath.Join(srcDir, filepath.FromSlash(filename))
		}

		_, statErr := os.Stat(filename)
		if statErr == nil {
			return nil
		}
		if !errors.Is(statErr, os.ErrNotExist) {
			return fmt.Errorf("%w: checking '%s': %w", utils.ErrFilesystem, filename, statErr)
		}

		if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
			return fmt.Errorf("%w: creating directory for '%s': %w", utils.ErrFilesystem, filename, err)
		}
		log.Debugf("Creating missing file %s", filename)
		if err := os.WriteFile(filename, []byte("# "+c.Name+"\n"), 0644); err != nil {
			return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, filename, err)
		}
		created = append(created, filename)
		return nil
	})
	if err != nil {
		return created, err
	}

	if len(created) > 0 {
		log.Infof("Created %d missing chapter files", len(created))
	}
	return created, nil
}
