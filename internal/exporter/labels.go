package exporter

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxLabelLength   = 36
	labelTruncatedTo = 33
	labelEllipsis    = "..."
)

// HeaderLabel turns a column key into display text: underscores become
// spaces, whitespace runs collapse, words are title-cased and labels longer
// than 36 characters are cut to 33 plus an ellipsis.
func HeaderLabel(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	s = titleCase(strings.Join(strings.Fields(s), " "))
	if utf8.RuneCountInString(s) > maxLabelLength {
		s = string([]rune(s)[:labelTruncatedTo]) + labelEllipsis
	}
	return s
}

// titleCase upper-cases the first cased letter after any uncased character
// and lower-cases the rest, so "fy24 pat" becomes "Fy24 Pat".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		if cased {
			if prevCased {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
		}
		b.WriteRune(r)
		prevCased = cased
	}
	return b.String()
}
