package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// CSVWriter provides CSV export of normalized records
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
	// HeaderLabels writes display labels instead of raw column keys
	HeaderLabels bool
}

// WriteRecords writes records as CSV. Columns follow first-seen key order and
// null cells are left empty.
func (w *CSVWriter) WriteRecords(out io.Writer, records []domain.Record, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	columns := domain.Columns(records)
	writer := csv.NewWriter(out)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c
		if options.HeaderLabels {
			header[i] = HeaderLabel(c)
		}
	}
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	row := make([]string, len(columns))
	for i, rec := range records {
		for c, key := range columns {
			row[c] = formatValue(rec.Value(key))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes records to a CSV file, creating parent directories.
func (w *CSVWriter) WriteFile(path string, records []domain.Record, options WriteOptions) error {
	w.logger.Info("Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", len(records)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := w.WriteRecords(file, records, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
