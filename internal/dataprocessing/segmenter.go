package dataprocessing

import (
	"strings"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// Segment splits markdown-like document text into candidate tables.
//
// A line containing '|' contributes a row of trimmed, non-empty cells to the
// current table. Any other line closes the current table, and so does a
// markdown separator row such as |---|:--:|, which never appears in the
// output. A markdown table with a separator therefore yields a header-only
// table followed by a table of its data rows. The result is empty when the
// text contains no tables.
func Segment(text string) []domain.CandidateTable {
	var (
		tables  []domain.CandidateTable
		current domain.CandidateTable
	)

	flush := func() {
		if len(current) > 0 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, "|") || isSeparatorLine(line) {
			flush()
			continue
		}
		if row := splitRow(line); len(row) > 0 {
			current = append(current, row)
		}
	}
	flush()

	return tables
}

// splitRow splits a pipe line into cells, dropping empty fragments.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	row := make([]string, 0, len(parts))
	for _, p := range parts {
		if cell := strings.TrimSpace(p); cell != "" {
			row = append(row, cell)
		}
	}
	return row
}

// isSeparatorLine reports whether line is a markdown header separator: only
// pipes, dashes, colons and whitespace, with at least one dash.
func isSeparatorLine(line string) bool {
	dash := false
	for _, r := range line {
		switch r {
		case '-':
			dash = true
		case '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return dash
}
