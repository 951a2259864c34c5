package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/xmark/pkg/build"
	"github.com/Sriram-PR/xmark/pkg/config"
	"github.com/Sriram-PR/xmark/pkg/content"
	"github.com/Sriram-PR/xmark/pkg/models"
	"github.com/Sriram-PR/xmark/pkg/summary"
)

// handleListBooks handles the list_books tool
func (s *Server) handleListBooks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books := make([]map[string]interface{}, 0, len(s.cfg.AppConfig.Books))

	for _, book := range s.cfg.AppConfig.Books {
		info := map[string]interface{}{
			"name":     book.Name,
			"location": book.Location,
		}

		if sum, err := s.loadSummary(book); err != nil {
			info["summary_error"] = err.Error()
		} else {
			info["title"] = sum.Title
			chapters := 0
			sum.MapChapters(func(*summary.Chapter) { chapters++ })
			info["chapters"] = chapters
		}

		if manifest := s.readManifest(book); manifest != nil {
			info["last_built"] = manifest.BuildEndTime.Format(time.RFC3339)
			info["last_status"] = manifest.Status
		}

		if s.jobManager.IsRunning(book.Name) {
			info["status"] = "running"
		}

		books = append(books, info)
	}

	result := map[string]interface{}{
		"books":       books,
		"config_path": s.cfg.ConfigPath,
		"total_books": len(books),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetSummary handles the get_summary tool
func (s *Server) handleGetSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	book, errResult := s.requireBook(request)
	if errResult != nil {
		return errResult, nil
	}

	sum, err := s.loadSummary(book)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load summary: %v", err)), nil
	}

	var tree strings.Builder
	if err := sum.WriteTree(&tree); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to print summary: %v", err)), nil
	}

	result := map[string]interface{}{
		"book":    book.Name,
		"summary": sum,
		"tree":    tree.String(),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetPages handles the get_pages tool
func (s *Server) handleGetPages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	book, errResult := s.requireBook(request)
	if errResult != nil {
		return errResult, nil
	}

	pages, redirects, err := s.collect(book)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to collect pages: %v", err)), nil
	}

	result := map[string]interface{}{
		"book":        book.Name,
		"pages":       pages,
		"redirects":   redirects,
		"total_pages": len(pages),
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleSearchBook handles the search_book tool
func (s *Server) handleSearchBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	bookName := request.GetString("book", "")
	maxResults := request.GetInt("max_results", 10)
	if maxResults <= 0 {
		maxResults = 10
	}
	if maxResults > 100 {
		maxResults = 100
	}

	books := s.cfg.AppConfig.Books
	if bookName != "" {
		book, exists := s.cfg.AppConfig.FindBook(bookName)
		if !exists {
			return mcp.NewToolResultError(fmt.Sprintf("book '%s' not found", bookName)), nil
		}
		books = []config.BookLocation{book}
	}

	results := s.searchSources(query, books, maxResults)

	response := map[string]interface{}{
		"query":         query,
		"results":       results,
		"total_matches": len(results),
	}
	if bookName != "" {
		response["book"] = bookName
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleBuildBook handles the build_book tool
func (s *Server) handleBuildBook(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	book, errResult := s.requireBook(request)
	if errResult != nil {
		return errResult, nil
	}

	if s.jobManager.IsRunning(book.Name) {
		existingJob := s.jobManager.GetJobByBook(book.Name)
		result := map[string]interface{}{
			"status":  "already_running",
			"message": "A build is already in progress for this book",
			"job_id":  existingJob.ID,
			"book":    book.Name,
		}
		return mcp.NewToolResultText(formatJSON(result)), nil
	}

	job := s.jobManager.CreateJob(book.Name)
	go s.runBuildJob(job.ID, book)

	result := map[string]interface{}{
		"status":  "started",
		"message": "Build started successfully",
		"job_id":  job.ID,
		"book":    book.Name,
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// handleGetJobStatus handles the get_job_status tool
func (s *Server) handleGetJobStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jobID := request.GetString("job_id", "")
	if jobID == "" {
		return mcp.NewToolResultError("job_id parameter is required"), nil
	}

	job := s.jobManager.GetJob(jobID)
	if job == nil {
		return mcp.NewToolResultError(fmt.Sprintf("job '%s' not found", jobID)), nil
	}

	result := map[string]interface{}{
		"job_id":         job.ID,
		"book":           job.Book,
		"status":         job.Status,
		"started_at":     job.StartedAt.Format(time.RFC3339),
		"pages_rendered": job.PagesRendered,
		"pages_failed":   job.PagesFailed,
	}
	if !job.CompletedAt.IsZero() {
		result["completed_at"] = job.CompletedAt.Format(time.RFC3339)
		result["duration_seconds"] = job.CompletedAt.Sub(job.StartedAt).Seconds()
	}
	if job.ErrorMessage != "" {
		result["error_message"] = job.ErrorMessage
	}
	return mcp.NewToolResultText(formatJSON(result)), nil
}

// runBuildJob builds one book in the background
func (s *Server) runBuildJob(jobID string, book config.BookLocation) {
	s.jobManager.UpdateStatus(jobID, JobStatusRunning, "")
	jobCtx := s.jobManager.GetContext(jobID)

	orchestrator, err := build.NewOrchestrator(s.cfg.AppConfig, s.cfg.ProjectDir, s.log)
	if err != nil {
		s.jobManager.UpdateStatus(jobID, JobStatusFailed, fmt.Sprintf("failed to set up build: %v", err))
		return
	}

	res := orchestrator.BuildBook(jobCtx, book)
	s.jobManager.UpdateProgress(jobID, res.PagesRendered, res.PagesFailed)

	errMsg := ""
	if res.Error != nil {
		errMsg = res.Error.Error()
	}
	switch res.Status {
	case models.BookStatusSuccess, models.BookStatusPartial:
		s.jobManager.UpdateStatus(jobID, JobStatusCompleted, errMsg)
	case models.BookStatusCanceled:
		s.jobManager.UpdateStatus(jobID, JobStatusCancelled, errMsg)
	default:
		s.jobManager.UpdateStatus(jobID, JobStatusFailed, errMsg)
	}
}

// requireBook reads the book argument and looks it up.
func (s *Server) requireBook(request mcp.CallToolRequest) (config.BookLocation, *mcp.CallToolResult) {
	name := request.GetString("book", "")
	if name == "" {
		return config.BookLocation{}, mcp.NewToolResultError("book parameter is required")
	}
	book, exists := s.cfg.AppConfig.FindBook(name)
	if !exists {
		return config.BookLocation{}, mcp.NewToolResultError(fmt.Sprintf("book '%s' not found. Available books: %v",
			name, build.GetAllBookNames(s.cfg.AppConfig)))
	}
	return book, nil
}

func (s *Server) loadSummary(book config.BookLocation) (*summary.Summary, error) {
	return build.LoadSummary(config.BookDir(s.cfg.ProjectDir, book), s.log.WithField("book", book.Name))
}

func (s *Server) collect(book config.BookLocation) ([]models.Page, []models.Redirect, error) {
	sum, err := s.loadSummary(book)
	if err != nil {
		return nil, nil, err
	}
	dirs := s.cfg.AppConfig.Dirs(s.cfg.ProjectDir)
	return content.Collect(sum, config.BookDir(s.cfg.ProjectDir, book), dirs, s.log.WithField("book", book.Name))
}

// searchSources matches query against chapter names, then chapter sources.
func (s *Server) searchSources(query string, books []config.BookLocation, maxResults int) []map[string]interface{} {
	results := make([]map[string]interface{}, 0)
	queryLower := strings.ToLower(query)

	for _, book := range books {
		pages, _, err := s.collect(book)
		if err != nil {
			s.log.WithField("book", book.Name).Debugf("Skipping book in search: %v", err)
			continue
		}

		for _, page := range pages {
			if len(results) >= maxResults {
				return results
			}

			source, err := os.ReadFile(page.Input)
			if err != nil {
				continue
			}
			text := string(source)

			matchLocation := ""
			switch {
			case strings.Contains(strings.ToLower(page.Name), queryLower):
				matchLocation = "name"
			case strings.Contains(strings.ToLower(text), queryLower):
				matchLocation = "content"
			default:
				continue
			}

			results = append(results, map[string]interface{}{
				"book":           book.Name,
				"name":           page.Name,
				"url":            page.URL(),
				"source":         s.relProject(page.Input),
				"snippet":        extractSnippet(text, query, 150),
				"match_location": matchLocation,
			})
		}
	}
	return results
}

func (s *Server) relProject(p string) string {
	rel, err := filepath.Rel(s.cfg.ProjectDir, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// readManifest loads the manifest of the book's last build, if any.
func (s *Server) readManifest(book config.BookLocation) *models.BookManifest {
	dirs := s.cfg.AppConfig.Dirs(s.cfg.ProjectDir)
	path := filepath.Join(dirs.OutDir, filepath.FromSlash(book.Location), config.GetEffectiveManifestFilename(*s.cfg.AppConfig))

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Debugf("Failed to read manifest '%s': %v", path, err)
		}
		return nil
	}

	var manifest models.BookManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	return &manifest
}

// extractSnippet extracts a snippet around the query match, slicing on rune
// boundaries so multi-byte UTF-8 characters are never split.
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(content)
	queryRunes := []rune(strings.ToLower(query))
	contentLowerRunes := []rune(strings.ToLower(content))

	idx := -1
	for i := 0; i <= len(contentLowerRunes)-len(queryRunes); i++ {
		if string(contentLowerRunes[i:i+len(queryRunes)]) == string(queryRunes) {
			idx = i
			break
		}
	}

	if idx == -1 {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return content
	}

	start := idx - maxLen/2
	if start < 0 {
		start = 0
	}
	end := idx + len(queryRunes) + maxLen/2
	if end > len(runes) {
		end = len(runes)
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

// formatJSON formats data as an indented JSON string
func formatJSON(data map[string]interface{}) string {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("{\"error\": %q}", err.Error())
	}
	return string(b)
}
