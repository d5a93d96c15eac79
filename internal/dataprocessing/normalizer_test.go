package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

func TestCoerceString(t *testing.T) {
	tests := []struct {
		input string
		want  domain.Value
	}{
		{"(1,234)", domain.Int(-1234)},
		{"—", domain.Null()},
		{"–", domain.Null()},
		{"-", domain.Null()},
		{"45.00", domain.Int(45)},
		{"3.14abc", domain.Float(3.14)},
		{"", domain.Null()},
		{"   ", domain.Null()},
		{"₹ 1,234.50", domain.Float(1234.5)},
		{"1.234.567", domain.Float(1.234567)},
		{".", domain.Null()},
		{"abc", domain.Null()},
		{"(", domain.Null()},
		{"-12", domain.Int(-12)},
		{"(12.5)", domain.Float(-12.5)},
		{"12%", domain.Int(12)},
		{"1-2", domain.Null()},
		{" 1,00,000 ", domain.Int(100000)},
		{"0.0000000001", domain.Int(0)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := CoerceString(tt.input)
			assert.True(t, tt.want.Equal(got), "CoerceString(%q) = %v (%s), want %v (%s)",
				tt.input, got, got.Kind(), tt.want, tt.want.Kind())
		})
	}
}

func TestCoerceNonStringValues(t *testing.T) {
	assert.True(t, domain.Int(7).Equal(Coerce(domain.Int(7))))
	assert.True(t, domain.Int(12).Equal(Coerce(domain.Float(12.0))))
	assert.True(t, domain.Float(1.5).Equal(Coerce(domain.Float(1.5))))
	assert.True(t, Coerce(domain.Null()).IsNull())
}

func column(values ...string) []domain.Record {
	records := make([]domain.Record, 0, len(values))
	for _, v := range values {
		records = append(records, domain.RecordOf("col", v))
	}
	return records
}

func TestColumnDecision(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.Record
		want    ColumnStats
		numeric bool
	}{
		{
			name:    "half parse",
			records: column("10", "abc", "20", "xyz"),
			want:    ColumnStats{NonEmpty: 4, Parsed: 2},
			numeric: true,
		},
		{
			name:    "below threshold",
			records: column("1", "2", "a", "b", "c", "d", "e", "f", "g", "h"),
			want:    ColumnStats{NonEmpty: 10, Parsed: 2},
			numeric: false,
		},
		{
			name:    "blanks ignored",
			records: column("", " ", "5"),
			want:    ColumnStats{NonEmpty: 1, Parsed: 1},
			numeric: true,
		},
		{
			name:    "all blank",
			records: column("", ""),
			want:    ColumnStats{},
			numeric: false,
		},
		{
			name:    "dash glyphs count as non-empty",
			records: column("-", "—", "12"),
			want:    ColumnStats{NonEmpty: 3, Parsed: 1},
			numeric: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := AnalyzeColumn(tt.records, "col")
			assert.Equal(t, tt.want, stats)
			assert.Equal(t, tt.numeric, stats.Numeric())
		})
	}
}

func TestNormalize(t *testing.T) {
	records := []domain.Record{
		domain.RecordOf("Particulars", " Revenue ", "FY24", "1,000", "Note", ""),
		domain.RecordOf("Particulars", "Expenses", "FY24", "(200)", "Note", "see annexure"),
		domain.RecordOf("Particulars", "Other", "FY24", "—", "Note", "   "),
	}

	numeric := Normalize(records)

	assert.Equal(t, []string{"FY24"}, numeric)

	assert.Equal(t, "Revenue", records[0].Value("Particulars").Str())
	assert.True(t, domain.Int(1000).Equal(records[0].Value("FY24")))
	assert.True(t, domain.Int(-200).Equal(records[1].Value("FY24")))
	assert.True(t, records[2].Value("FY24").IsNull())

	assert.True(t, records[0].Value("Note").IsNull())
	assert.Equal(t, "see annexure", records[1].Value("Note").Str())
	assert.True(t, records[2].Value("Note").IsNull())

	assert.Equal(t, []string{"Particulars", "FY24", "Note"}, records[0].Keys())
}

func TestNormalizeRaggedRecords(t *testing.T) {
	records := []domain.Record{
		domain.RecordOf("Item", "Revenue", "FY24", 100),
		domain.RecordOf("Item", "Profit"),
	}

	numeric := Normalize(records)
	require.Equal(t, []string{"FY24"}, numeric)

	_, ok := records[1].Get("FY24")
	assert.False(t, ok)
	assert.True(t, domain.Int(100).Equal(records[0].Value("FY24")))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}
