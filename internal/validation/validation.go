// Package validation checks user-supplied paths and version codes before
// they are turned into directory and file names.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Limits on user input.
const (
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxVersionCodeLength bounds version codes such as "RVR1960".
	MaxVersionCodeLength = 32
	// MaxConcurrency bounds the number of simultaneous fetches.
	MaxConcurrency = 64
)

// Common validation errors.
var (
	ErrInvalidFilename    = errors.New("invalid filename")
	ErrPathTooLong        = errors.New("path too long")
	ErrFilenameTooLong    = errors.New("filename too long")
	ErrInvalidCharacter   = errors.New("invalid character in path")
	ErrEmptyPath          = errors.New("path cannot be empty")
	ErrInvalidVersionCode = errors.New("invalid version code")
	ErrInvalidConcurrency = errors.New("invalid concurrency")
)

// ValidateFilename checks that a single path element is safe to create.
// It rejects path separators, control characters and dangerous patterns.
func ValidateFilename(filename string) error {
	if filename == "" {
		return ErrInvalidFilename
	}

	if len(filename) > MaxFilenameLength {
		return ErrFilenameTooLong
	}

	if filename == "." || filename == ".." {
		return fmt.Errorf("%w: reserved name", ErrInvalidFilename)
	}

	if strings.ContainsAny(filename, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}

	// Reject filenames starting with hyphen (can be confused with command flags)
	if strings.HasPrefix(filename, "-") {
		return fmt.Errorf("%w: filename cannot start with hyphen", ErrInvalidFilename)
	}

	return nil
}

// ValidatePath checks a directory argument for length and invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// NormalizeVersionCode uppercases and validates a version code.
// Codes name directories and output files, so they are limited to ASCII
// letters, digits, '-' and '_'.
func NormalizeVersionCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidVersionCode)
	}
	if len(code) > MaxVersionCodeLength {
		return "", fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidVersionCode, code, MaxVersionCodeLength)
	}
	for _, r := range code {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidVersionCode, code, r)
		}
	}
	if err := ValidateFilename(code); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidVersionCode, err)
	}
	return code, nil
}

// NormalizeVersionList normalizes each code and drops duplicates,
// keeping first-appearance order. Items may themselves be comma-separated.
func NormalizeVersionList(codes []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, item := range codes {
		for _, raw := range strings.Split(item, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			code, err := NormalizeVersionCode(raw)
			if err != nil {
				return nil, err
			}
			if !seen[code] {
				seen[code] = true
				out = append(out, code)
			}
		}
	}
	return out, nil
}

// ValidateConcurrency checks a worker count.
func ValidateConcurrency(n int) error {
	if n < 1 || n > MaxConcurrency {
		return fmt.Errorf("%w: %d not in 1..%d", ErrInvalidConcurrency, n, MaxConcurrency)
	}
	return nil
}
