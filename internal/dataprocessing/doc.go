// Package dataprocessing turns the text of a financial document into
// normalized table records.
//
// # Stages
//
//  1. Segment: split markdown-like text into candidate tables of
//     pipe-delimited rows.
//  2. Classify: label each table as balance_sheet, quarterly, annual or
//     unknown from its header text.
//  3. Select: pick the first annual table, else the first quarterly one.
//  4. Transform: map each data row onto the header labels.
//  5. Normalize: coerce predominantly numeric columns, handling parentheses
//     negatives, thousands separators and dash placeholders.
//
// # Usage
//
//	res, err := dataprocessing.ProcessText(markdown)
//	if err != nil {
//	    return err
//	}
//	if !res.HasData() {
//	    // route to the "no data found" placeholder
//	}
//
// Rows that already arrive structured, for example from an LLM extractor,
// go through ProcessRecords instead.
//
// # Data Flow
//
//	text → Segment → []CandidateTable → Select → Transform → []Record → Normalize
//
// # Error Handling
//
// Only structurally invalid input fails: a table with no rows yields
// ErrInvalidInput. A missing annual or quarterly table is reported through
// Result.HasData, and cells that cannot be coerced become null.
//
// Every function in this package is pure and safe for concurrent use on
// distinct inputs.
package dataprocessing
