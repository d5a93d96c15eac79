package dataprocessing

import (
	"fmt"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// Transform turns a table's data rows into records keyed by the header cells.
// Missing trailing cells become empty strings and cells beyond the header
// are ignored. When the header repeats a label, the later column's value
// replaces the earlier one.
func Transform(table domain.CandidateTable) ([]domain.Record, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: table has no header row", ErrInvalidInput)
	}

	header := table.Header()
	rows := table.DataRows()
	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		rec := domain.NewRecord(len(header))
		for i, label := range header {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rec.Set(label, domain.String(cell))
		}
		records = append(records, rec)
	}
	return records, nil
}
