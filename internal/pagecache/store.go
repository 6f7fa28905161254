// Package pagecache keeps the raw markup of fetched chapter pages on disk,
// keyed by the BLAKE3 digest of the request URL.
//
// Pages are stored at <root>/<first2>/<digest>.html.
package pagecache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/chech0x/parsedBible/internal/fileutil"
)

// ErrPageNotFound is returned when no page is cached for a URL.
var ErrPageNotFound = errors.New("page not found")

// ErrInvalidKey is returned when a key is not a BLAKE3 hex digest.
var ErrInvalidKey = errors.New("invalid key format")

var keyPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// osReadFile is a variable to allow testing of read errors.
var osReadFile = os.ReadFile

// Store is an on-disk page cache.
type Store struct {
	root string
}

// NewStore creates a store rooted at root, creating the directory if needed.
func NewStore(root string) (*Store, error) {
	if err := fileutil.EnsureDir(root); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Key returns the cache key for a URL.
func Key(url string) string {
	return fileutil.Digest([]byte(url))
}

// Put stores the page fetched from url. Existing content is replaced.
func (s *Store) Put(url string, data []byte) error {
	path := s.pathForKey(Key(url))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create prefix directory: %w", err)
	}
	return fileutil.WriteAtomic(path, data, 0o644)
}

// Get returns the page cached for url or ErrPageNotFound.
func (s *Store) Get(url string) ([]byte, error) {
	return s.GetKey(Key(url))
}

// GetKey returns the page stored under key.
func (s *Store) GetKey(key string) ([]byte, error) {
	if !keyPattern.MatchString(key) {
		return nil, ErrInvalidKey
	}
	data, err := osReadFile(s.pathForKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return data, nil
}

// Has reports whether a page is cached for url.
func (s *Store) Has(url string) bool {
	_, err := os.Stat(s.pathForKey(Key(url)))
	return err == nil
}

func (s *Store) pathForKey(key string) string {
	return filepath.Join(s.root, key[:2], key+".html")
}
