// Package docstore resolves book names to files in the documents directory and reads them.
package docstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kensho/internal/extract"
)

// ErrNotFound is returned when no file matches a book.
var ErrNotFound = errors.New("document not found")

// Store is a directory of book files named {book_name}{ext}.
type Store struct {
	dir        string
	extensions []string
	extractor  *extract.Extractor
}

// NewStore returns a store over dir. extensions are tried in order when several files
// match a book; nil means extract.SupportedExtensions.
func NewStore(dir string, extensions []string) *Store {
	if len(extensions) == 0 {
		extensions = extract.SupportedExtensions
	}
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &Store{dir: dir, extensions: exts, extractor: extract.NewExtractor()}
}

// Dir returns the documents directory.
func (s *Store) Dir() string {
	return s.dir
}

// Resolve returns the path of the file for bookKey, matching the file name
// case-insensitively.
func (s *Store) Resolve(bookKey string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(bookKey))
	if key == "" {
		return "", fmt.Errorf("%w: empty book name", ErrNotFound)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("read documents directory: %w", err)
	}

	best, bestRank := "", len(s.extensions)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name))) != key {
			continue
		}
		if rank := s.rank(ext); rank < bestRank {
			best, bestRank = name, rank
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, bookKey)
	}
	return filepath.Join(s.dir, best), nil
}

func (s *Store) rank(ext string) int {
	for i, e := range s.extensions {
		if e == ext {
			return i
		}
	}
	return len(s.extensions)
}

// Load returns the text of the file at path.
func (s *Store) Load(path string) (string, error) {
	text, err := s.extractor.Extract(path)
	if err != nil {
		return "", fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// Supported reports whether path has one of the store's extensions.
func (s *Store) Supported(path string) bool {
	return s.rank(strings.ToLower(filepath.Ext(path))) < len(s.extensions)
}
