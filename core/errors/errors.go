// Package errors provides the error kinds shared by the fetch and aggregate paths.
//
// Each kind has a sentinel (for errors.Is) and a typed error carrying the
// offending identifier. Failures are contained at the smallest unit possible:
// chapter, then book, then version, then process.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure kind.
var (
	// ErrSetup indicates a required directory could not be created.
	ErrSetup = errors.New("setup failed")
	// ErrUnknownBook indicates a book name matched no catalog alias.
	ErrUnknownBook = errors.New("unknown book")
	// ErrFetch indicates a network or HTTP failure for one chapter.
	ErrFetch = errors.New("fetch failed")
	// ErrExtraction indicates the expected content container was missing.
	ErrExtraction = errors.New("extraction failed")
	// ErrMalformedRecord indicates a chapter file lacks required fields.
	ErrMalformedRecord = errors.New("malformed record")
)

// SetupError reports a directory that could not be created.
type SetupError struct {
	Path string // Directory that could not be created
	Err  error  // Underlying OS error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot create directory %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cannot create directory %s", e.Path)
}

func (e *SetupError) Unwrap() error { return e.Err }

func (e *SetupError) Is(target error) bool { return target == ErrSetup }

// UnknownBookError reports a book name that is not in the catalog.
type UnknownBookError struct {
	Input string
}

func (e *UnknownBookError) Error() string {
	return fmt.Sprintf("book %q not recognized", e.Input)
}

func (e *UnknownBookError) Is(target error) bool { return target == ErrUnknownBook }

// FetchError reports a failed chapter download.
type FetchError struct {
	URL        string // Request target
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error  // Transport error, if any
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("fetch %s failed", e.URL)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// ExtractionError reports chapter markup that could not be turned into verses.
type ExtractionError struct {
	Book    string
	Chapter int
	Reason  string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s %d: %s", e.Book, e.Chapter, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// MalformedRecordError reports a chapter file that cannot be aggregated.
type MalformedRecordError struct {
	Path   string
	Reason string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record %s: %s", e.Path, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "rename")
	Path      string // File path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewSetup creates a SetupError
func NewSetup(path string, err error) *SetupError {
	return &SetupError{Path: path, Err: err}
}

// NewUnknownBook creates an UnknownBookError
func NewUnknownBook(input string) *UnknownBookError {
	return &UnknownBookError{Input: input}
}

// NewFetch creates a FetchError
func NewFetch(url string, statusCode int, err error) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode, Err: err}
}

// NewExtraction creates an ExtractionError
func NewExtraction(book string, chapter int, reason string) *ExtractionError {
	return &ExtractionError{Book: book, Chapter: chapter, Reason: reason}
}

// NewMalformed creates a MalformedRecordError
func NewMalformed(path, reason string, err error) *MalformedRecordError {
	return &MalformedRecordError{Path: path, Reason: reason, Err: err}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
