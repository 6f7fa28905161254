package ir

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// validateChapterTextFn is injectable for testing error type handling.
var validateChapterTextFn = validateChapterText

var bookCodePattern = regexp.MustCompile(`^[a-z0-9]{3}$`)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// newValidationError creates a new ValidationError.
func newValidationError(path, message string) error {
	return &ValidationError{Path: path, Message: message}
}

// ValidateChapter validates a ChapterRecord and returns all validation errors.
func ValidateChapter(c *ChapterRecord) []error {
	var errs []error

	if !bookCodePattern.MatchString(c.BookCode) {
		errs = append(errs, newValidationError("chapter.book_code",
			fmt.Sprintf("invalid book code: %q", c.BookCode)))
	}

	if c.VersionCode == "" {
		errs = append(errs, newValidationError("chapter.version_code", "version code is required"))
	}

	if c.ChapterNumber < 1 {
		errs = append(errs, newValidationError("chapter.number",
			fmt.Sprintf("chapter number must be positive, got %d", c.ChapterNumber)))
	}

	for i, v := range c.Verses {
		path := fmt.Sprintf("chapter.verses[%d]", i)
		if v.Number != i+1 {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("verse number %d breaks dense numbering, want %d", v.Number, i+1)))
		}
		if msg := normalizedTextProblem(v.NormalizedText); msg != "" {
			errs = append(errs, newValidationError(path+".normalized_text", msg))
		}
	}

	return errs
}

func normalizedTextProblem(s string) string {
	switch {
	case strings.ContainsAny(s, "\n\t"):
		return "contains newline or tab"
	case strings.Contains(s, "  "):
		return "contains consecutive spaces"
	case s != strings.TrimSpace(s):
		return "has surrounding whitespace"
	}
	return ""
}

// ValidateVersion validates a VersionDocument and returns all validation errors.
// A document is only valid when it has at least one book.
func ValidateVersion(d *VersionDocument) []error {
	var errs []error

	if d.Metadata.Revision == "" {
		errs = append(errs, newValidationError("version.metadata.revision", "revision is required"))
	}

	if len(d.Books) == 0 {
		errs = append(errs, newValidationError("version.books", "document has no books"))
	}

	prev := 0
	for i, b := range d.Books {
		path := fmt.Sprintf("version.books[%d]", i)
		if b.Order < 1 || b.Order > 66 {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("order %d outside 1..66", b.Order)))
		}
		if b.Order <= prev {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("order %d not strictly after %d", b.Order, prev)))
		}
		prev = b.Order

		if len(b.Chapters) == 0 {
			errs = append(errs, newValidationError(path, "book has no chapters"))
		}
		for _, err := range validateChapterTextFn(b.Chapters) {
			var ve *ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, newValidationError(
					fmt.Sprintf("%s.%s", path, ve.Path), ve.Message))
			} else {
				errs = append(errs, newValidationError(path, err.Error()))
			}
		}
	}

	return errs
}

func validateChapterText(chapters []ChapterText) []error {
	var errs []error
	prev := -1
	for i, c := range chapters {
		path := fmt.Sprintf("chapters[%d]", i)
		if c.Number <= prev {
			errs = append(errs, newValidationError(path,
				fmt.Sprintf("chapter %d not strictly after %d", c.Number, prev)))
		}
		prev = c.Number
		if len(c.Verses) == 0 {
			errs = append(errs, newValidationError(path, "chapter has no verses"))
		}
	}
	return errs
}
