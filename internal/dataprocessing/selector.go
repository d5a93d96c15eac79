package dataprocessing

import (
	"fmt"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// Selection is the table chosen as the report's primary statement.
type Selection struct {
	Classification domain.Classification
	Table          domain.CandidateTable
	// Index is the table's position among the candidates, or -1.
	Index int
}

// Found reports whether a table was selected. A miss is a normal outcome
// that callers route to the "no data" placeholder.
func (s Selection) Found() bool {
	return s.Index >= 0
}

// Select picks the first annual table in document order, falling back to the
// first quarterly table. Balance sheets and unknown tables are never chosen.
func Select(tables []domain.CandidateTable) (Selection, error) {
	firstQuarterly := -1
	for i, table := range tables {
		class, err := Classify(table)
		if err != nil {
			return Selection{Index: -1}, fmt.Errorf("table %d: %w", i+1, err)
		}
		switch class {
		case domain.ClassificationAnnual:
			return Selection{Classification: class, Table: table, Index: i}, nil
		case domain.ClassificationQuarterly:
			if firstQuarterly < 0 {
				firstQuarterly = i
			}
		}
	}

	if firstQuarterly >= 0 {
		return Selection{
			Classification: domain.ClassificationQuarterly,
			Table:          tables[firstQuarterly],
			Index:          firstQuarterly,
		}, nil
	}
	return Selection{Index: -1}, nil
}
