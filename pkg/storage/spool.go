// Package storage provides the upload spool: a local scratch directory
// where uploads live only for the duration of one conversion request.
// Nothing here is a document store; the sweeper deletes anything a crashed
// request left behind.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Spool is a scratch directory for in-flight uploads.
type Spool struct {
	basePath string
}

// NewSpool creates the spool directory if needed.
func NewSpool(basePath string) (*Spool, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve spool directory: %w", err)
	}
	return &Spool{basePath: abs}, nil
}

// Save stores an upload under a uniquified, sanitized name and returns the
// absolute path.
func (s *Spool) Save(filename string, r io.Reader) (string, error) {
	safeFilename := sanitizeFilename(filename)
	storedFilename := fmt.Sprintf("%s_%s", uuid.NewString()[:8], safeFilename)
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(filePath) // Cleanup on error
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	return filePath, nil
}

// Open returns a reader for a spooled file.
func (s *Spool) Open(path string) (io.ReadCloser, error) {
	if err := s.contains(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spool file: %w", err)
	}
	return f, nil
}

// Remove deletes a spooled file. A file already gone is not an error.
func (s *Spool) Remove(path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete spool file: %w", err)
	}
	return nil
}

// SweepOlderThan deletes spooled files older than age and returns how many
// were removed. Files still inside their request window are left alone.
func (s *Spool) SweepOlderThan(age time.Duration) (int, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to list spool directory: %w", err)
	}

	cutoff := time.Now().Add(-age)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.basePath, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// contains rejects paths outside the spool directory.
func (s *Spool) contains(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, s.basePath+string(filepath.Separator)) {
		return fmt.Errorf("path %q is outside the spool", path)
	}
	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	// Replace path separators and other dangerous characters
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
