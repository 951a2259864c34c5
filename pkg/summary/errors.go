package summary

import (
	"fmt"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// ParseError is a structural violation of the SUMMARY.md grammar. Line and
// Column are 1-based and point at the offending event.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse SUMMARY.md line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// Unwrap lets errors.Is(err, utils.ErrParsing) match any ParseError.
func (e *ParseError) Unwrap() error {
	return utils.ErrParsing
}
