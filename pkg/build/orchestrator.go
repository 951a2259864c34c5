// Package build turns the books of a project into HTML. Each book goes
// through the same pipeline: SUMMARY.md is parsed, missing chapter files are
// optionally created, the page list is collected and every page is rendered.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/xmark/pkg/config"
	"github.com/Sriram-PR/xmark/pkg/content"
	"github.com/Sriram-PR/xmark/pkg/create"
	"github.com/Sriram-PR/xmark/pkg/models"
	"github.com/Sriram-PR/xmark/pkg/render"
	"github.com/Sriram-PR/xmark/pkg/summary"
	"github.com/Sriram-PR/xmark/pkg/utils"
)

// SummaryFilename is the table of contents file every book directory holds.
const SummaryFilename = "SUMMARY.md"

// BookResult contains the result of building a single book
type BookResult struct {
	Book          string
	Status        models.BookStatus
	Error         error
	PagesRendered int
	PagesFailed   int
	Created       []string // Stub files written for missing chapters
	Duration      time.Duration
	Manifest      *models.BookManifest
}

// Orchestrator builds several books of one project in parallel
type Orchestrator struct {
	appCfg     *config.AppConfig
	projectDir string
	dirs       content.Dirs
	log        *logrus.Entry
	buildID    string

	renderer *render.Renderer
	slots    *semaphore.Weighted // Bounds books built at the same time
}

// NewOrchestrator creates an orchestrator for the project rooted at
// projectDir. appCfg is expected to be validated already.
func NewOrchestrator(appCfg *config.AppConfig, projectDir string, log *logrus.Entry) (*Orchestrator, error) {
	dirs := appCfg.Dirs(projectDir)
	buildID := uuid.NewString()
	log = log.WithFields(logrus.Fields{"component": "build", "build_id": buildID})

	templatesDir := appCfg.Output.HTML.Templates
	if templatesDir != "" && !filepath.IsAbs(templatesDir) {
		templatesDir = filepath.Join(projectDir, filepath.FromSlash(templatesDir))
	}
	renderer, err := render.New(render.Options{Dirs: dirs, TemplatesDir: templatesDir}, log)
	if err != nil {
		return nil, err
	}

	parallel := appCfg.Output.HTML.MaxParallelBooks
	if parallel <= 0 {
		parallel = 1
	}

	return &Orchestrator{
		appCfg:     appCfg,
		projectDir: projectDir,
		dirs:       dirs,
		log:        log,
		buildID:    buildID,
		renderer:   renderer,
		slots:      semaphore.NewWeighted(int64(parallel)),
	}, nil
}

// BuildID identifies this orchestrator's run in logs and manifests.
func (o *Orchestrator) BuildID() string {
	return o.buildID
}

// Run builds the named books, or every configured book when names is empty,
// and waits for all of them. Results follow the order of names. A failing
// book never stops the others.
func (o *Orchestrator) Run(ctx context.Context, names []string) ([]BookResult, error) {
	if len(names) == 0 {
		names = GetAllBookNames(o.appCfg)
	}
	if err := ValidateBookNames(o.appCfg, names); err != nil {
		return nil, err
	}

	if o.appCfg.BuildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.appCfg.BuildTimeout)
		defer cancel()
	}

	startTime := time.Now()
	o.log.Infof("Building %d books: %v", len(names), names)

	results := make([]BookResult, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		book, _ := o.appCfg.FindBook(name)
		wg.Add(1)
		go func(i int, book config.BookLocation) {
			defer wg.Done()
			if err := o.slots.Acquire(ctx, 1); err != nil {
				results[i] = BookResult{Book: book.Name, Status: models.BookStatusCanceled, Error: err}
				return
			}
			defer o.slots.Release(1)
			results[i] = o.BuildBook(ctx, book)
		}(i, book)
	}
	wg.Wait()

	o.logSummary(results, time.Since(startTime))
	return results, nil
}

// BuildBook runs the whole pipeline for one book.
func (o *Orchestrator) BuildBook(ctx context.Context, book config.BookLocation) BookResult {
	startTime := time.Now()
	bookLog := o.log.WithField("book", book.Name)
	result := BookResult{Book: book.Name, Status: models.BookStatusRunning}

	manifest := &models.BookManifest{
		BuildID:        o.buildID,
		Book:           book.Name,
		Location:       book.Location,
		BuildStartTime: startTime,
	}

	fail := func(err error) BookResult {
		result.Error = err
		result.Status = models.BookStatusFailure
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Status = models.BookStatusCanceled
		}
		result.Duration = time.Since(startTime)
		bookLog.Errorf("Build failed [%s]: %v", utils.CategorizeError(err), err)
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	bookDir := config.BookDir(o.projectDir, book)
	s, err := LoadSummary(bookDir, bookLog)
	if err != nil {
		return fail(err)
	}
	manifest.Title = s.Title

	if config.GetEffectiveCreateMissing(book, *o.appCfg) {
		created, err := create.Missing(bookDir, s, bookLog)
		if err != nil {
			return fail(err)
		}
		result.Created = created
	}

	pages, redirects, err := content.Collect(s, bookDir, o.dirs, bookLog)
	if err != nil {
		return fail(err)
	}

	pageResults, err := o.renderer.RenderBook(ctx, &render.Book{Summary: s, Pages: pages, Redirects: redirects})
	if err != nil {
		return fail(err)
	}

	for _, pr := range pageResults {
		pm := o.pageManifest(pr)
		if pr.Err != nil {
			result.PagesFailed++
		} else {
			result.PagesRendered++
		}
		manifest.Pages = append(manifest.Pages, pm)
	}
	for _, r := range redirects {
		manifest.Redirects = append(manifest.Redirects, models.Redirect{From: o.relOut(r.From), To: r.To})
	}

	result.Status = models.BookStatusSuccess
	if result.PagesFailed > 0 {
		result.Status = models.BookStatusPartial
		result.Error = fmt.Errorf("%d of %d pages failed to render", result.PagesFailed, len(pageResults))
	}

	manifest.Status = result.Status
	manifest.TotalPagesRendered = result.PagesRendered
	manifest.BuildEndTime = time.Now()
	if result.Error != nil {
		manifest.ErrorType = utils.CategorizeError(result.Error)
	}
	result.Manifest = manifest

	bookOutDir := filepath.Join(o.dirs.OutDir, filepath.FromSlash(book.Location))
	if o.appCfg.Output.HTML.EnableManifest {
		path := filepath.Join(bookOutDir, config.GetEffectiveManifestFilename(*o.appCfg))
		if err := WriteManifest(path, manifest); err != nil {
			bookLog.Warnf("Failed to write manifest: %v", err)
		}
	}
	if o.appCfg.Output.HTML.EnableStructure {
		path := filepath.Join(o.dirs.OutDir, utils.BookSlug(book.Name)+"_structure.txt")
		if err := utils.GenerateAndSaveTreeStructure(bookOutDir, path, bookLog); err != nil {
			bookLog.Warnf("Failed to write output structure: %v", err)
		}
	}

	result.Duration = time.Since(startTime)
	bookLog.Infof("Built %d pages (%d failed) in %v", result.PagesRendered, result.PagesFailed, result.Duration)
	return result
}

func (o *Orchestrator) pageManifest(pr render.PageResult) models.PageManifest {
	pm := models.PageManifest{
		Name:       pr.Page.Name,
		Source:     o.relBase(pr.Page.Input),
		Output:     o.relOut(pr.Page.Output),
		URL:        pr.Page.URL(),
		Status:     models.PageStatusRendered,
		SourceHash: pr.SourceHash,
		RenderedAt: pr.RenderedAt,
	}
	if pr.Err != nil {
		pm.Status = models.PageStatusFailure
		pm.ErrorType = utils.CategorizeError(pr.Err)
	}
	return pm
}

func (o *Orchestrator) relBase(p string) string {
	return relSlash(o.dirs.BaseDir, p)
}

func (o *Orchestrator) relOut(p string) string {
	return relSlash(o.dirs.OutDir, p)
}

func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// LoadSummary reads bookDir/SUMMARY.md, parses it and resolves every chapter
// location against bookDir.
func LoadSummary(bookDir string, log *logrus.Entry) (*summary.Summary, error) {
	path := filepath.Join(bookDir, SummaryFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading '%s': %w", utils.ErrFilesystem, path, err)
	}

	s, err := summary.NewParser(string(data), log).Parse()
	if err != nil {
		return nil, fmt.Errorf("summary '%s': %w", path, err)
	}
	s.ResolveLocations(bookDir)
	return s, nil
}

// WriteManifest writes manifest as YAML to path.
func WriteManifest(path string, manifest *models.BookManifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: creating directory for '%s': %w", utils.ErrFilesystem, path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: writing '%s': %w", utils.ErrFilesystem, path, err)
	}
	return nil
}

// logSummary logs a summary of all book results
func (o *Orchestrator) logSummary(results []BookResult, totalDuration time.Duration) {
	o.log.Info("============================================")
	o.log.Infof("Build completed in %v", totalDuration)
	o.log.Info("Book Results:")

	totalPages := 0
	successCount := 0
	failCount := 0

	for _, r := range results {
		switch r.Status {
		case models.BookStatusSuccess:
			successCount++
		default:
			failCount++
		}
		totalPages += r.PagesRendered

		o.log.Infof("  %s: %s - %d pages in %v", r.Book, r.Status, r.PagesRendered, r.Duration)
		if r.Error != nil {
			o.log.Infof("    Error: %v", r.Error)
		}
	}

	o.log.Info("--------------------------------------------")
	o.log.Infof("Total: %d books (%d success, %d with errors), %d pages rendered",
		len(results), successCount, failCount, totalPages)
	o.log.Info("============================================")
}

// ValidateBookNames checks that all provided book names exist in the config
func ValidateBookNames(appCfg *config.AppConfig, names []string) error {
	for _, name := range names {
		if _, exists := appCfg.FindBook(name); !exists {
			return fmt.Errorf("%w: book '%s' not found. Available books: %v",
				utils.ErrConfigValidation, name, GetAllBookNames(appCfg))
		}
	}
	return nil
}

// GetAllBookNames returns all book names from the config, in config order
func GetAllBookNames(appCfg *config.AppConfig) []string {
	names := make([]string, 0, len(appCfg.Books))
	for _, b := range appCfg.Books {
		names = append(names, b.Name)
	}
	return names
}
