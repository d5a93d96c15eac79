package dataprocessing

import (
	"fmt"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// Result is the outcome of running the pipeline on one document.
type Result struct {
	// TablesFound counts candidate tables seen in the text.
	TablesFound    int
	Classification domain.Classification
	Records        []domain.Record
	NumericColumns []string
}

// HasData reports whether at least one record was produced.
func (r Result) HasData() bool {
	return len(r.Records) > 0
}

// Tables returns the selected records shaped for the response envelope.
func (r Result) Tables() []domain.ExtractedTable {
	return ShapeExtracted(r.Records, r.Classification)
}

// ProcessText runs segmentation, selection, row transformation and
// normalization. When no annual or quarterly table exists the result is
// empty and the error is nil.
func ProcessText(text string) (Result, error) {
	tables := Segment(text)
	res := Result{TablesFound: len(tables)}

	sel, err := Select(tables)
	if err != nil {
		return res, err
	}
	if !sel.Found() {
		return res, nil
	}

	records, err := Transform(sel.Table)
	if err != nil {
		return res, fmt.Errorf("transform table %d: %w", sel.Index+1, err)
	}

	res.Classification = sel.Classification
	res.Records = records
	res.NumericColumns = Normalize(records)
	return res, nil
}

// ProcessRecords normalizes rows that arrive already structured, skipping
// segmentation and selection.
func ProcessRecords(records []domain.Record) Result {
	res := Result{Records: records}
	if len(records) > 0 {
		res.TablesFound = 1
		res.Classification = domain.ClassificationUnknown
	}
	res.NumericColumns = Normalize(records)
	return res
}

// ShapeExtracted wraps structured rows as a single numbered table whose
// headers are the keys of the first row.
func ShapeExtracted(records []domain.Record, class domain.Classification) []domain.ExtractedTable {
	if len(records) == 0 {
		return []domain.ExtractedTable{}
	}
	return []domain.ExtractedTable{{
		TableNumber:    1,
		Classification: class,
		Headers:        records[0].Keys(),
		Rows:           records,
	}}
}
