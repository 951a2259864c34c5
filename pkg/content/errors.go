package content

import (
	"fmt"

	"github.com/Sriram-PR/xmark/pkg/utils"
)

// PathError reports a path that cannot be related to the root it was
// expected under.
type PathError struct {
	Op       string // What was being computed, e.g. "output location"
	Path     string
	Root     string
	Conflict string // For duplicate outputs, the input that claimed the output first
}

// OpDuplicateOutput marks two chapters resolving to the same output file.
const OpDuplicateOutput = "duplicate output"

func (e *PathError) Error() string {
	if e.Conflict != "" {
		return fmt.Sprintf("%s: %q maps to the same file under %q as %q", e.Op, e.Path, e.Root, e.Conflict)
	}
	return fmt.Sprintf("%s: path %q is not under %q", e.Op, e.Path, e.Root)
}

func (e *PathError) Unwrap() error {
	return utils.ErrPath
}

// EncodingError reports a path that is not valid UTF-8 and so cannot be
// turned into a URL.
type EncodingError struct {
	Path string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("path %q is not valid UTF-8", e.Path)
}

func (e *EncodingError) Unwrap() error {
	return utils.ErrEncoding
}
