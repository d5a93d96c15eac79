package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

var (
	quarterlyA = domain.CandidateTable{{"Quarter Ended", "Q1"}, {"Revenue", "10"}}
	quarterlyB = domain.CandidateTable{{"Nine Months", "9M"}, {"Revenue", "30"}}
	annual     = domain.CandidateTable{{"Particulars", "FY24"}, {"Revenue", "40"}}
	balance    = domain.CandidateTable{{"Balance Sheet"}, {"Assets", "100"}}
	notes      = domain.CandidateTable{{"Notes"}, {"1", "x"}}
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		tables    []domain.CandidateTable
		wantClass domain.Classification
		wantIndex int
	}{
		{"annual wins over earlier quarterly", []domain.CandidateTable{quarterlyA, annual}, domain.ClassificationAnnual, 1},
		{"annual wins over later quarterly", []domain.CandidateTable{annual, quarterlyA}, domain.ClassificationAnnual, 0},
		{"first quarterly in document order", []domain.CandidateTable{notes, quarterlyB, quarterlyA}, domain.ClassificationQuarterly, 1},
		{"balance sheet ignored", []domain.CandidateTable{balance, quarterlyA}, domain.ClassificationQuarterly, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Select(tt.tables)
			require.NoError(t, err)
			require.True(t, sel.Found())
			assert.Equal(t, tt.wantClass, sel.Classification)
			assert.Equal(t, tt.wantIndex, sel.Index)
			assert.Equal(t, tt.tables[tt.wantIndex], sel.Table)
		})
	}
}

func TestSelectNone(t *testing.T) {
	for _, tables := range [][]domain.CandidateTable{nil, {balance, notes}} {
		sel, err := Select(tables)
		require.NoError(t, err)
		assert.False(t, sel.Found())
		assert.Nil(t, sel.Table)
	}
}

func TestSelectInvalidTable(t *testing.T) {
	_, err := Select([]domain.CandidateTable{quarterlyA, {}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
