// Package store persists the wishlist snapshot and the raw page it came from.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/aluiziolira/wishlist-watch/models"
	"github.com/aluiziolira/wishlist-watch/parser"
)

// Snapshot is the file-backed list of books from the previous run.
type Snapshot struct {
	path   string
	logger *zap.Logger
}

// NewSnapshot returns a store for the snapshot at path.
func NewSnapshot(path string, logger *zap.Logger) *Snapshot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshot{path: path, logger: logger}
}

// Path returns the snapshot location.
func (s *Snapshot) Path() string {
	return s.path
}

// Load reads the previous snapshot. A missing, unreadable or corrupt file is
// treated as a first run and yields an empty list.
func (s *Snapshot) Load() []models.Book {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("snapshot unreadable, starting from empty",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return []models.Book{}
	}

	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		s.logger.Warn("snapshot corrupt, starting from empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return []models.Book{}
	}
	for i := range books {
		if err := parser.ValidateBook(&books[i]); err != nil {
			s.logger.Warn("snapshot record invalid, starting from empty",
				zap.String("path", s.path),
				zap.Int("index", i),
				zap.Error(err),
			)
			return []models.Book{}
		}
	}
	if books == nil {
		books = []models.Book{}
	}
	return books
}

// Save replaces the snapshot with books. The previous file stays intact if the
// write fails.
func (s *Snapshot) Save(books []models.Book) error {
	if books == nil {
		books = []models.Book{}
	}
	payload, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writeFileAtomic(s.path, payload); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// SaveRaw stores the provider output verbatim at path.
func SaveRaw(path, markup string) error {
	if err := writeFileAtomic(path, []byte(markup)); err != nil {
		return fmt.Errorf("write raw markup: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path with data. A file created by the first write
// gets mode 0644; an existing file keeps its mode.
func writeFileAtomic(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	created := errors.Is(statErr, fs.ErrNotExist)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	if created {
		if err := os.Chmod(path, newFileMode); err != nil {
			return fmt.Errorf("chmod %q: %w", path, err)
		}
	}
	return nil
}

const newFileMode fs.FileMode = 0o644

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
