// Package document reads and writes the sitemap generator's settings file
// and watches it for changes made outside the console.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrEmptyPath is returned when no document path is configured
	ErrEmptyPath = errors.New("document path is empty")

	// ErrEmptyDocument is returned when submitting an empty document
	ErrEmptyDocument = errors.New("document is empty")
)

// FileSource is a settings document stored on the local filesystem.
type FileSource struct {
	Path string

	mu   sync.Mutex
	last []byte
}

// NewFileSource returns a source for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load reads the document.
func (s *FileSource) Load(ctx context.Context) ([]byte, error) {
	if s.Path == "" {
		return nil, ErrEmptyPath
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	s.mu.Lock()
	s.last = data
	s.mu.Unlock()
	return data, nil
}

// Submit replaces the document with data. The new content is written to a
// temp file in the same directory and renamed over the old one.
func (s *FileSource) Submit(ctx context.Context, data []byte) error {
	if s.Path == "" {
		return ErrEmptyPath
	}
	if len(data) == 0 {
		return ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(s.Path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".sitemap-settings-*.xml")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set document mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	s.mu.Lock()
	s.last = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}

func (s *FileSource) lastSeen() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
