package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedType is returned for uploads with a disallowed extension.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrFileTooLarge is returned for uploads over the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for zero-byte uploads.
	ErrEmptyFile = errors.New("empty file")
)

// UploadError carries a client-facing message for a rejected upload.
type UploadError struct {
	Err     error
	Message string
}

func (e *UploadError) Error() string { return e.Message }

func (e *UploadError) Unwrap() error { return e.Err }

// FileValidator checks uploaded documents and the files the CLI reads and writes.
type FileValidator struct {
	allowed  []string
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a validator for the given extensions and size limit.
// Extensions are compared case-insensitively; a leading dot is optional.
func NewFileValidator(allowed []string, maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, 0, len(allowed))
	for _, ext := range allowed {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return &FileValidator{
		allowed:  exts,
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateUpload checks an uploaded file's name and size. Size is ignored
// when negative (unknown).
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !v.allowedExt(ext) {
		v.logger.Warn("Rejected upload type",
			slog.String("filename", filename),
			slog.String("extension", ext))
		return &UploadError{Err: ErrUnsupportedType, Message: v.typeMessage()}
	}
	if size == 0 {
		return &UploadError{Err: ErrEmptyFile, Message: "Uploaded file is empty."}
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Rejected upload size",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("limit", v.maxBytes))
		return v.TooLarge()
	}
	return nil
}

// TooLarge returns the size-limit rejection. Transports use it when the body
// is cut off before the file size is known.
func (v *FileValidator) TooLarge() error {
	return &UploadError{Err: ErrFileTooLarge, Message: fmt.Sprintf("File exceeds %s limit.", formatLimit(v.maxBytes))}
}

// MaxBytes returns the upload size limit.
func (v *FileValidator) MaxBytes() int64 {
	return v.maxBytes
}

func (v *FileValidator) allowedExt(ext string) bool {
	for _, a := range v.allowed {
		if ext == a {
			return true
		}
	}
	return false
}

func (v *FileValidator) typeMessage() string {
	names := make([]string, 0, len(v.allowed))
	for _, ext := range v.allowed {
		names = append(names, strings.ToUpper(strings.TrimPrefix(ext, ".")))
	}
	return fmt.Sprintf("Only %s files are allowed.", strings.Join(names, ", "))
}

func formatLimit(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist: %w", path, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
