package extraction

import "strings"

const profitAndLossPrompt = `You are a financial analyst. Extract the P&L (Profit and Loss) table from this report.

TASK:
1. Find the 'Consolidated Statement of Profit and Loss' or a similar P&L table.
2. Extract ALL available financial data columns (every year or period present).
3. Use period headers such as "FY2024", "FY2025" or "Year Ended March 31, 2024".
4. Keep the Particulars (line items) with ALL their corresponding period values.
5. Return a JSON list where each object has "Particulars" and one key per period.

Example output with three periods:
[
  {"Particulars": "Revenue from operations", "FY26": 123456, "FY25": 120000, "FY24": 100000},
  {"Particulars": "Total Income", "FY26": 125000, "FY25": 122000, "FY24": 102000}
]

RULES:
- Extract every period found in the report, not just one.
- Column names must be clean: FY24, FY25, FY26 or Year_Ended_2024.
- Numeric values are JSON numbers, not strings.
- Remove index numbers from Particulars ('1. Revenue' becomes 'Revenue').
- Negative numbers in parentheses become negative: (1,234) becomes -1234.
- Keep ALL line items of the P&L statement.

RAW TEXT:
{{DOCUMENT}}

Return ONLY valid JSON. If there is no P&L data, return an empty list [].`

// BuildPrompt embeds document markdown in the profit and loss extraction prompt.
func BuildPrompt(markdown string) string {
	return strings.Replace(profitAndLossPrompt, "{{DOCUMENT}}", markdown, 1)
}
