package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadStore writes request-scoped uploads into a single directory.
type UploadStore struct {
	dir    string
	logger *slog.Logger
}

// NewUploadStore creates the directory if needed and returns a store rooted there.
func NewUploadStore(dir string, logger *slog.Logger) (*UploadStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &UploadStore{
		dir:    dir,
		logger: logger.With(slog.String("component", "upload_store")),
	}, nil
}

// Dir returns the directory uploads are written to.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save copies r into a new file named <uuid-hex><ext> and returns its path.
// A partially written file is removed on error.
func (s *UploadStore) Save(r io.Reader, ext string) (string, error) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}

	s.logger.Debug("upload stored",
		slog.String("path", path),
		slog.Int64("bytes", n))
	return path, nil
}

// Remove deletes a stored upload. Paths outside the store and files that are
// already gone are ignored.
func (s *UploadStore) Remove(path string) error {
	if path == "" || !s.owns(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove upload",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	s.logger.Debug("upload removed", slog.String("path", path))
	return nil
}

func (s *UploadStore) owns(path string) bool {
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(abs) == dir
}
