package dataprocessing

import (
	"math"
	"strconv"
	"strings"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

const (
	// NumericColumnThreshold is the minimum share of non-empty cells that
	// must coerce to a number for a column to be treated as numeric.
	NumericColumnThreshold = 0.3

	integerTolerance = 1e-9
	maxExactInt      = 1 << 63
)

// emptyGlyphs are placeholders statements print instead of a value.
var emptyGlyphs = map[string]struct{}{
	"–": {},
	"—": {},
	"-": {},
}

// CoerceString parses an accounting-formatted cell. Parentheses mark a
// negative amount, separators and currency symbols are stripped, and values
// within 1e-9 of an integer become ints. Anything unparseable yields null.
func CoerceString(raw string) domain.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Null()
	}
	if _, ok := emptyGlyphs[s]; ok {
		return domain.Null()
	}

	negative := false
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" || cleaned == "." || cleaned == "-" {
		return domain.Null()
	}

	if strings.Count(cleaned, ".") > 1 {
		parts := strings.Split(cleaned, ".")
		cleaned = parts[0] + "." + strings.Join(parts[1:], "")
	}

	num, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return domain.Null()
	}
	if negative {
		num = -num
	}
	return numberValue(num)
}

// Coerce applies CoerceString to string cells. Numeric cells are kept, with
// integral floats narrowed to ints.
func Coerce(v domain.Value) domain.Value {
	switch v.Kind() {
	case domain.KindString:
		return CoerceString(v.Str())
	case domain.KindInt:
		return v
	case domain.KindFloat:
		return numberValue(v.Number())
	default:
		return domain.Null()
	}
}

func numberValue(f float64) domain.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Null()
	}
	rounded := math.Round(f)
	if math.Abs(f-rounded) < integerTolerance && math.Abs(rounded) < maxExactInt {
		return domain.Int(int64(rounded))
	}
	return domain.Float(f)
}

// ColumnStats is the evidence behind a numeric column decision.
type ColumnStats struct {
	NonEmpty int
	Parsed   int
}

// Numeric applies the column rule: at least one parsed cell and a parsed
// share of NumericColumnThreshold or more.
func (s ColumnStats) Numeric() bool {
	if s.NonEmpty == 0 || s.Parsed == 0 {
		return false
	}
	return float64(s.Parsed)/float64(s.NonEmpty) >= NumericColumnThreshold
}

// AnalyzeColumn counts non-empty and coercible cells of one column.
func AnalyzeColumn(records []domain.Record, column string) ColumnStats {
	var stats ColumnStats
	for _, rec := range records {
		v := rec.Value(column)
		if strings.TrimSpace(v.String()) == "" {
			continue
		}
		stats.NonEmpty++
		if !Coerce(v).IsNull() {
			stats.Parsed++
		}
	}
	return stats
}

// Normalize rewrites records in place column by column and returns the
// numeric columns in column order. Numeric columns hold coerced numbers or
// null; other columns hold trimmed strings, with blank cells set to null.
func Normalize(records []domain.Record) []string {
	var numeric []string
	for _, col := range domain.Columns(records) {
		isNumeric := AnalyzeColumn(records, col).Numeric()
		if isNumeric {
			numeric = append(numeric, col)
		}
		for i := range records {
			v, ok := records[i].Get(col)
			if !ok {
				continue
			}
			records[i].Set(col, normalizeCell(v, isNumeric))
		}
	}
	return numeric
}

func normalizeCell(v domain.Value, numeric bool) domain.Value {
	if numeric {
		return Coerce(v)
	}
	if v.Kind() != domain.KindString {
		return v
	}
	s := strings.TrimSpace(v.Str())
	if s == "" {
		return domain.Null()
	}
	return domain.String(s)
}
