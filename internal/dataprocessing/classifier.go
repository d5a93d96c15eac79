package dataprocessing

import (
	"fmt"
	"strings"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// classificationRules is evaluated in order; the first matching rule wins.
// Quarterly markers must precede "fy" so "quarter ended ... fy24" stays
// quarterly.
var classificationRules = []struct {
	class    domain.Classification
	keywords []string
}{
	{domain.ClassificationBalanceSheet, []string{"balance sheet"}},
	{domain.ClassificationQuarterly, []string{"quarter ended", "nine months", "previous year ended"}},
	{domain.ClassificationAnnual, []string{"fy", "year ended 31 march"}},
}

// Classify labels a table by financial period type using its header row.
// An empty table is rejected with ErrInvalidInput.
func Classify(table domain.CandidateTable) (domain.Classification, error) {
	if len(table) == 0 {
		return "", fmt.Errorf("%w: cannot classify a table without rows", ErrInvalidInput)
	}

	header := strings.ToLower(strings.Join(table.Header(), " "))
	for _, rule := range classificationRules {
		for _, kw := range rule.keywords {
			if strings.Contains(header, kw) {
				return rule.class, nil
			}
		}
	}
	return domain.ClassificationUnknown, nil
}
