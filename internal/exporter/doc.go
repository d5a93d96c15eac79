// Package exporter renders normalized financial records as spreadsheets.
//
// Encoder lays records out as a Sheet and hands it to a WorksheetWriter:
//
// StyledWriter: green bold header, frozen header row, column widths capped at
// 60, per-column number formats with parenthesized negatives, a banded
// "FinancialReport" table and "-" for blank cells. Each styling step is
// best-effort.
//
// BareWriter: values only, streamed with excelize's StreamWriter.
//
// CSVWriter exports the same records as CSV with an optional UTF-8 BOM.
//
// Example usage:
//
//	enc := exporter.NewEncoder(exporter.WithLogger(logger))
//	data, err := enc.Encode(records, numericColumns)
package exporter
