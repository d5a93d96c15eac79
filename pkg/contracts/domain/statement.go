package domain

// ExtractedTable is a table returned to clients inside FinancialData.
type ExtractedTable struct {
	TableNumber    int            `json:"table_number"`
	Classification Classification `json:"classification,omitempty"`
	Headers        []string       `json:"headers"`
	Rows           []Record       `json:"rows"`
}

// FinancialData groups extracted tables by statement type. Only the profit
// and loss statement is populated today; the remaining groups are always
// present so clients can rely on the shape.
type FinancialData struct {
	PnL          []ExtractedTable `json:"pnl"`
	BalanceSheet []ExtractedTable `json:"balanceSheet"`
	CashFlow     []ExtractedTable `json:"cashFlow"`
	Others       []ExtractedTable `json:"others"`
}

// NewFinancialData returns FinancialData with non-nil empty groups.
func NewFinancialData(pnl ...ExtractedTable) FinancialData {
	if pnl == nil {
		pnl = []ExtractedTable{}
	}
	return FinancialData{
		PnL:          pnl,
		BalanceSheet: []ExtractedTable{},
		CashFlow:     []ExtractedTable{},
		Others:       []ExtractedTable{},
	}
}

// ExtractionMode selects how document text becomes records.
type ExtractionMode string

const (
	ExtractionModeHeuristic ExtractionMode = "heuristic"
	ExtractionModeLLM       ExtractionMode = "llm"
	ExtractionModeAuto      ExtractionMode = "auto"
)

// Valid reports whether m is a known mode.
func (m ExtractionMode) Valid() bool {
	switch m {
	case ExtractionModeHeuristic, ExtractionModeLLM, ExtractionModeAuto:
		return true
	}
	return false
}

// ReportResponse is the envelope returned by the upload and convert endpoints.
type ReportResponse struct {
	Success        bool           `json:"success"`
	FinancialData  FinancialData  `json:"financialData"`
	ExcelBuffer    *string        `json:"excelBuffer"`
	Message        string         `json:"message"`
	Classification Classification `json:"classification,omitempty"`
	Source         ExtractionMode `json:"source,omitempty"`
	RequestID      string         `json:"requestId,omitempty"`
}
