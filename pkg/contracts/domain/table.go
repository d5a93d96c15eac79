package domain

// CandidateTable is a block of pipe-delimited rows found in document text.
// The first row is the header. Rows may be ragged.
type CandidateTable [][]string

// Header returns the first row, or nil for an empty table.
func (t CandidateTable) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// DataRows returns every row after the header.
func (t CandidateTable) DataRows() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// Classification is the financial period type of a table.
type Classification string

const (
	ClassificationBalanceSheet Classification = "balance_sheet"
	ClassificationQuarterly    Classification = "quarterly"
	ClassificationAnnual       Classification = "annual"
	ClassificationUnknown      Classification = "unknown"
)

// Selectable reports whether tables of this class may be chosen as the
// report's primary statement.
func (c Classification) Selectable() bool {
	return c == ClassificationAnnual || c == ClassificationQuarterly
}

// String implements fmt.Stringer.
func (c Classification) String() string { return string(c) }
