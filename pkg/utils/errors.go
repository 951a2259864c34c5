package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// --- Sentinel Errors for Categorization ---
var (
	ErrParsing            = errors.New("summary parsing error")          // Wrapped by summary.ParseError
	ErrPath               = errors.New("path outside of expected root")  // Wrapped by content.PathError
	ErrEncoding           = errors.New("path is not valid UTF-8 text")   // Wrapped by content.EncodingError
	ErrFilesystem         = errors.New("filesystem error")               // Wraps os errors
	ErrConfigValidation   = errors.New("configuration validation error") // Wraps config problems
	ErrMarkdownConversion = errors.New("failed to convert markdown to HTML")
	ErrTemplate           = errors.New("template error")
)

// WrapErrorf adds formatted context in front of err. Returns nil for a nil err.
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// CategorizeError maps an error to a predefined category string for logging.
func CategorizeError(err error) string {
	if err == nil {
		return "None"
	}

	switch {
	case errors.Is(err, ErrParsing):
		lowerErrMsg := strings.ToLower(err.Error())
		if strings.Contains(lowerErrMsg, "title") {
			return "Summary_Title"
		}
		if strings.Contains(lowerErrMsg, "suffix") {
			return "Summary_Suffix"
		}
		if strings.Contains(lowerErrMsg, "hyperlink") {
			return "Summary_ListItem"
		}
		return "Summary_Other"
	case errors.Is(err, ErrPath):
		if strings.Contains(err.Error(), "duplicate") {
			return "Path_Duplicate"
		}
		return "Path_OutsideRoot"
	case errors.Is(err, ErrEncoding):
		return "Path_Encoding"
	case errors.Is(err, ErrConfigValidation):
		return "Config_Validation"
	case errors.Is(err, ErrMarkdownConversion):
		return "Content_Markdown"
	case errors.Is(err, ErrTemplate):
		return "Render_Template"
	case errors.Is(err, ErrFilesystem):
		if errors.Is(err, os.ErrPermission) {
			return "Filesystem_Permission"
		}
		if errors.Is(err, os.ErrNotExist) {
			return "Filesystem_NotExist"
		}
		if errors.Is(err, os.ErrExist) {
			return "Filesystem_Exist"
		}
		return "Filesystem_Other"
	}

	// --- Fallback checks for common underlying error types ---
	if errors.Is(err, context.Canceled) {
		return "System_ContextCanceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "System_ContextDeadlineExceeded"
	}
	if errors.Is(err, os.ErrNotExist) {
		return "Filesystem_NotExist"
	}
	if errors.Is(err, os.ErrPermission) {
		return "Filesystem_Permission"
	}

	return "Unknown"
}
