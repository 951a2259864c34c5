package watch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/xmark/pkg/build"
	"github.com/Sriram-PR/xmark/pkg/config"
)

// Builder is the part of build.Orchestrator the scheduler needs
type Builder interface {
	Run(ctx context.Context, names []string) ([]build.BookResult, error)
}

// Scheduler polls book sources and rebuilds the books whose fingerprint moved
type Scheduler struct {
	appCfg       *config.AppConfig
	projectDir   string
	books        []string
	interval     time.Duration
	builder      Builder
	log          *logrus.Entry
	stateManager *StateManager

	// OnBuild, when set, receives the results of every rebuild round
	OnBuild func([]build.BookResult)
}

// NewScheduler creates a scheduler for the named books, or all books when
// books is empty. State is kept in the HTML output directory.
func NewScheduler(appCfg *config.AppConfig, projectDir string, books []string, interval time.Duration,
	builder Builder, log *logrus.Entry) *Scheduler {
	if len(books) == 0 {
		books = build.GetAllBookNames(appCfg)
	}
	return &Scheduler{
		appCfg:       appCfg,
		projectDir:   projectDir,
		books:        books,
		interval:     interval,
		builder:      builder,
		log:          log.WithField("component", "watch"),
		stateManager: NewStateManager(appCfg.Dirs(projectDir).OutDir),
	}
}

// Run builds every changed book, then polls at the configured interval until
// ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := build.ValidateBookNames(s.appCfg, s.books); err != nil {
		return err
	}
	if err := s.stateManager.Load(); err != nil {
		s.log.Warnf("Failed to load watch state: %v (starting fresh)", err)
	}

	s.log.Infof("Watching %d books every %s: %v", len(s.books), FormatInterval(s.interval), s.books)
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Watch scheduler shutting down...")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce rebuilds the books whose sources changed since their last build
// and returns their names.
func (s *Scheduler) RunOnce(ctx context.Context) []string {
	fingerprints := make(map[string]string, len(s.books))
	var changed []string
	for _, name := range s.books {
		book, _ := s.appCfg.FindBook(name)
		fp, err := Fingerprint(config.BookDir(s.projectDir, book))
		if err != nil {
			s.log.Warnf("Book '%s': %v", name, err)
			continue
		}
		if s.stateManager.Changed(name, fp) {
			fingerprints[name] = fp
			changed = append(changed, name)
		}
	}
	if len(changed) == 0 {
		s.log.Debug("No book sources changed")
		return nil
	}

	s.log.Infof("Sources changed for %d books: %v", len(changed), changed)
	results, err := s.builder.Run(ctx, changed)
	if err != nil {
		s.log.Errorf("Rebuild failed: %v", err)
		return changed
	}

	for _, r := range results {
		if ctx.Err() != nil {
			// Interrupted builds are retried on the next start.
			break
		}
		errorMsg := ""
		if r.Error != nil {
			errorMsg = r.Error.Error()
		}
		s.stateManager.UpdateBookState(r.Book, fingerprints[r.Book], string(r.Status), r.PagesRendered, errorMsg)
	}
	if err := s.stateManager.Save(); err != nil {
		s.log.Errorf("Failed to save watch state: %v", err)
	}
	if s.OnBuild != nil {
		s.OnBuild(results)
	}
	return changed
}

// GetStatus returns the recorded state of every watched book
func (s *Scheduler) GetStatus() map[string]BookState {
	status := make(map[string]BookState, len(s.books))
	for _, name := range s.books {
		state, _ := s.stateManager.GetBookState(name)
		status[name] = state
	}
	return status
}

// FormatInterval formats a duration for display
func FormatInterval(d time.Duration) string {
	if d < time.Minute {
		if d < time.Second {
			return d.String()
		}
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs > 0 {
			return fmt.Sprintf("%dm%ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins > 0 {
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}

// ParseInterval parses a polling interval such as "500ms", "2s" or "1m".
// Intervals under 100ms are rejected.
func ParseInterval(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval format: %s (examples: 500ms, 2s, 1m)", s)
	}
	if d < 100*time.Millisecond {
		return 0, fmt.Errorf("interval %s is too short, minimum is 100ms", s)
	}
	return d, nil
}
