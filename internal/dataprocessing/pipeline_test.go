package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

const quarterlyStatement = `Statement of Standalone Unaudited Results

| Quarter Ended | Revenue |
| Q1 FY24 | (500) |

All figures in lakhs.`

func TestProcessTextQuarterly(t *testing.T) {
	res, err := ProcessText(quarterlyStatement)
	require.NoError(t, err)

	assert.True(t, res.HasData())
	assert.Equal(t, 1, res.TablesFound)
	assert.Equal(t, domain.ClassificationQuarterly, res.Classification)
	require.Len(t, res.Records, 1)
	assert.Contains(t, res.NumericColumns, "Revenue")
	assert.True(t, domain.Int(-500).Equal(res.Records[0].Value("Revenue")))
}

func TestProcessTextPrefersAnnual(t *testing.T) {
	text := `| Quarter Ended | Q1 |
| Revenue | 10 |

| Balance Sheet | As at |
| Assets | 100 |

| Particulars | FY24 | FY23 |
| Revenue | 1,200 | 1,000 |
| Finance costs | (35) | (30) |
| Exceptional items | — | 12 |`

	res, err := ProcessText(text)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TablesFound)
	assert.Equal(t, domain.ClassificationAnnual, res.Classification)
	require.Len(t, res.Records, 3)
	assert.Equal(t, []string{"FY24", "FY23"}, res.NumericColumns)
	assert.True(t, domain.Int(-35).Equal(res.Records[1].Value("FY24")))
	assert.True(t, res.Records[2].Value("FY24").IsNull())
	assert.Equal(t, "Exceptional items", res.Records[2].Value("Particulars").Str())
}

func TestProcessTextSeparatorSplitsTable(t *testing.T) {
	res, err := ProcessText("| Particulars | FY24 |\n|---|---|\n| Revenue | 100 |")
	require.NoError(t, err)

	// The header-only annual table wins selection and has no data rows.
	assert.Equal(t, 2, res.TablesFound)
	assert.Equal(t, domain.ClassificationAnnual, res.Classification)
	assert.False(t, res.HasData())
}

func TestProcessTextNoTable(t *testing.T) {
	res, err := ProcessText("| Balance Sheet |\n| Assets | 1 |\n\nno statements here")
	require.NoError(t, err)

	assert.False(t, res.HasData())
	assert.Equal(t, 1, res.TablesFound)
	assert.Empty(t, res.Tables())
}

func TestProcessRecords(t *testing.T) {
	records := []domain.Record{
		domain.RecordOf("Line Item", "Revenue from operations", "Q1 FY25", "1,234"),
		domain.RecordOf("Line Item", "Total expenses", "Q1 FY25", "(987)"),
	}

	res := ProcessRecords(records)
	require.True(t, res.HasData())
	assert.Equal(t, []string{"Q1 FY25"}, res.NumericColumns)

	tables := res.Tables()
	require.Len(t, tables, 1)
	assert.Equal(t, 1, tables[0].TableNumber)
	assert.Equal(t, []string{"Line Item", "Q1 FY25"}, tables[0].Headers)
	assert.True(t, domain.Int(-987).Equal(tables[0].Rows[1].Value("Q1 FY25")))
}
