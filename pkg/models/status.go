package models

// BookStatus represents where a book is in the build pipeline
type BookStatus string

const (
	BookStatusUnset    BookStatus = ""          // Zero value = unset/unknown
	BookStatusPending  BookStatus = "pending"   // Queued, waiting for a build slot
	BookStatusRunning  BookStatus = "running"   // Being parsed, collected or rendered
	BookStatusSuccess  BookStatus = "success"   // Every page rendered
	BookStatusPartial  BookStatus = "partial"   // Built, but some pages failed to render
	BookStatusFailure  BookStatus = "failure"   // Summary, paths or output setup failed
	BookStatusCanceled BookStatus = "cancelled" // Build context cancelled before the book ran
)

// String implements fmt.Stringer for logging
func (s BookStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s BookStatus) IsValid() bool {
	switch s {
	case BookStatusPending, BookStatusRunning, BookStatusSuccess, BookStatusPartial,
		BookStatusFailure, BookStatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true once a book will not change status again
func (s BookStatus) IsTerminal() bool {
	switch s {
	case BookStatusSuccess, BookStatusPartial, BookStatusFailure, BookStatusCanceled:
		return true
	}
	return false
}

// PageStatus represents the render result of a single page
type PageStatus string

const (
	PageStatusUnset    PageStatus = ""         // Zero value = unset/unknown
	PageStatusRendered PageStatus = "rendered" // HTML written
	PageStatusFailure  PageStatus = "failure"  // Reading or rendering the page failed
)

// String implements fmt.Stringer for logging
func (s PageStatus) String() string {
	if s == "" {
		return "unset"
	}
	return string(s)
}

// IsValid returns true if the status is a known operational value
func (s PageStatus) IsValid() bool {
	switch s {
	case PageStatusRendered, PageStatusFailure:
		return true
	}
	return false
}
