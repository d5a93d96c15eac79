package exporter

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// Workbook layout constants.
const (
	SheetName  = "Full_Report"
	TableName  = "FinancialReport"
	TableStyle = "TableStyleMedium9"

	IntegerFormat = "#,##0;(#,##0)"
	DecimalFormat = "#,##0.00;(#,##0.00)"

	EmptyCellGlyph = "-"
	AlertColumn    = "Alert"
	AlertMessage   = "No data found"

	maxColumnWidth = 60
	widthPadding   = 2
)

// Column describes one worksheet column.
type Column struct {
	// Key is the record key the column was built from.
	Key string
	// Label is the display text of the header cell.
	Label   string
	Width   float64
	Numeric bool
	// NumFmt is the number format for numeric cells; empty otherwise.
	NumFmt string
}

// Sheet is the fully laid out worksheet handed to a WorksheetWriter.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]domain.Value
}

// LastCell returns the bottom-right cell reference of the used range.
func (s Sheet) LastCell() string {
	return cellName(len(s.Columns), len(s.Rows)+1)
}

// WorksheetWriter renders a laid out sheet into xlsx bytes.
type WorksheetWriter interface {
	WriteSheet(sheet Sheet) ([]byte, error)
}

// BuildSheet lays out normalized records. An empty record list becomes a
// single "No data found" alert row.
func BuildSheet(records []domain.Record, numeric []string) Sheet {
	if len(records) == 0 {
		records = []domain.Record{domain.RecordOf(AlertColumn, AlertMessage)}
		numeric = nil
	}

	isNumeric := make(map[string]bool, len(numeric))
	for _, c := range numeric {
		isNumeric[c] = true
	}

	keys := domain.Columns(records)
	sheet := Sheet{
		Name:    SheetName,
		Columns: make([]Column, len(keys)),
		Rows:    make([][]domain.Value, len(records)),
	}
	for r, rec := range records {
		row := make([]domain.Value, len(keys))
		for c, k := range keys {
			row[c] = rec.Value(k)
		}
		sheet.Rows[r] = row
	}

	seen := make(map[string]bool, len(keys))
	for c, k := range keys {
		col := Column{
			Key:     k,
			Label:   uniqueLabel(HeaderLabel(k), seen),
			Numeric: isNumeric[k],
		}
		maxLen := utf8.RuneCountInString(k)
		for _, row := range sheet.Rows {
			if n := utf8.RuneCountInString(row[c].String()); n > maxLen {
				maxLen = n
			}
		}
		col.Width = float64(min(maxColumnWidth, maxLen+widthPadding))
		if col.Numeric {
			col.NumFmt = numberFormat(sheet.Rows, c)
		}
		sheet.Columns[c] = col
	}
	return sheet
}

// uniqueLabel suffixes label with " 2", " 3", ... until it differs, ignoring
// case, from every label already in seen. Table header cells must be distinct
// or Excel reports the workbook as damaged.
func uniqueLabel(label string, seen map[string]bool) string {
	candidate := label
	for n := 2; seen[strings.ToLower(candidate)]; n++ {
		candidate = label + " " + strconv.Itoa(n)
	}
	seen[strings.ToLower(candidate)] = true
	return candidate
}

// numberFormat looks only at the first non-null value of the column. A
// column with no values defaults to the integer format.
func numberFormat(rows [][]domain.Value, col int) string {
	for _, row := range rows {
		v := row[col]
		if v.IsNull() {
			continue
		}
		if v.IsInt() {
			return IntegerFormat
		}
		return DecimalFormat
	}
	return IntegerFormat
}

// IsBlank reports whether a cell renders as the empty glyph.
func IsBlank(v domain.Value) bool {
	return v.IsNull() || (v.Kind() == domain.KindString && strings.TrimSpace(v.Str()) == "")
}

// Encoder produces xlsx workbooks from normalized records.
type Encoder struct {
	writer WorksheetWriter
	logger *slog.Logger
}

type encoderOptions struct {
	styled bool
	writer WorksheetWriter
	logger *slog.Logger
}

// Option configures an Encoder.
type Option func(*encoderOptions)

// WithStyling selects the styled writer (true, the default) or the bare
// writer that emits values only.
func WithStyling(enabled bool) Option {
	return func(o *encoderOptions) { o.styled = enabled }
}

// WithWriter installs a custom WorksheetWriter.
func WithWriter(w WorksheetWriter) Option {
	return func(o *encoderOptions) { o.writer = w }
}

// WithLogger sets the logger used by the encoder and its writer.
func WithLogger(logger *slog.Logger) Option {
	return func(o *encoderOptions) { o.logger = logger }
}

// NewEncoder creates an Encoder. The worksheet writer is fixed here.
func NewEncoder(opts ...Option) *Encoder {
	o := encoderOptions{styled: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	logger := o.logger.With(slog.String("component", "excel_encoder"))

	w := o.writer
	if w == nil {
		if o.styled {
			w = NewStyledWriter(logger)
		} else {
			w = NewBareWriter()
		}
	}
	return &Encoder{writer: w, logger: logger}
}

// Encode lays out the records and renders them.
func (e *Encoder) Encode(records []domain.Record, numeric []string) ([]byte, error) {
	sheet := BuildSheet(records, numeric)
	data, err := e.writer.WriteSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("write worksheet: %w", err)
	}
	e.logger.Debug("workbook encoded",
		slog.Int("rows", len(sheet.Rows)),
		slog.Int("columns", len(sheet.Columns)),
		slog.Int("bytes", len(data)))
	return data, nil
}
