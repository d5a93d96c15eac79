package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   domain.Classification
	}{
		{"balance sheet", []string{"Consolidated Balance Sheet"}, domain.ClassificationBalanceSheet},
		{"quarterly before fy", []string{"Quarter Ended 31 Dec FY24"}, domain.ClassificationQuarterly},
		{"annual fy columns", []string{"FY24", "FY25", "FY26"}, domain.ClassificationAnnual},
		{"unknown notes", []string{"Notes to Accounts"}, domain.ClassificationUnknown},
		{"nine months", []string{"Particulars", "Nine Months Ended 31.12.2024"}, domain.ClassificationQuarterly},
		{"previous year ended", []string{"Particulars", "Previous Year Ended"}, domain.ClassificationQuarterly},
		{"year ended march", []string{"Particulars", "Year Ended 31 March 2024"}, domain.ClassificationAnnual},
		{"cells joined with space", []string{"Balance", "Sheet as at"}, domain.ClassificationBalanceSheet},
		{"case insensitive", []string{"QUARTER ENDED"}, domain.ClassificationQuarterly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := domain.CandidateTable{tt.header, {"Revenue", "100"}}
			got, err := Classify(table)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyOnlyReadsHeader(t *testing.T) {
	table := domain.CandidateTable{
		{"Particulars", "Amount"},
		{"Quarter ended", "FY24"},
	}

	got, err := Classify(table)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassificationUnknown, got)
}

func TestClassifyEmptyTable(t *testing.T) {
	_, err := Classify(domain.CandidateTable{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
