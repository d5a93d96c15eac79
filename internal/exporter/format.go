package exporter

import (
	"fmt"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return fmt.Sprintf("%d", i)
}

// formatValue renders a cell for CSV output. Null becomes the empty string.
func formatValue(v domain.Value) string {
	switch v.Kind() {
	case domain.KindInt:
		return formatInt(v.IntValue())
	case domain.KindFloat:
		return formatFloat(v.Number())
	default:
		return v.String()
	}
}
