package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// BareWriter streams values without any styling. Headers are the raw column
// keys and null cells stay empty.
type BareWriter struct{}

// NewBareWriter creates a BareWriter.
func NewBareWriter() *BareWriter {
	return &BareWriter{}
}

// WriteSheet implements WorksheetWriter.
func (w *BareWriter) WriteSheet(sheet Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet.Name)
	if err != nil {
		return nil, fmt.Errorf("create stream writer: %w", err)
	}

	header := make([]interface{}, len(sheet.Columns))
	for i, col := range sheet.Columns {
		header[i] = col.Key
	}
	if err := sw.SetRow("A1", header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for r, row := range sheet.Rows {
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = v.Interface()
		}
		if err := sw.SetRow(cellName(1, r+2), values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return nil, fmt.Errorf("flush stream: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
