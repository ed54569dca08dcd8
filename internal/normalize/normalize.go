// Package normalize applies human-reviewed adjustments to extracted
// financial statement figures so that EBIT and EBITDA reflect sustainable
// operating performance.
package normalize

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

// Field names used in the audit trail.
const (
	FieldPersonnelCosts         = "personnel_costs"
	FieldPremisesCosts          = "premises_costs"
	FieldOtherOperatingExpenses = "other_operating_expenses"
)

// AppliedAdjustment records one line-item replacement.
type AppliedAdjustment struct {
	Category    domain.AdjustmentCategory `json:"category"`
	Field       string                    `json:"field"`
	Original    decimal.Decimal           `json:"original"`
	Normalized  decimal.Decimal           `json:"normalized"`
	Delta       decimal.Decimal           `json:"delta"` // change to EBIT
	Explanation string                    `json:"explanation,omitempty"`
}

// IgnoredAdjustment records an adjustment the normalizer skipped.
type IgnoredAdjustment struct {
	Category    domain.AdjustmentCategory `json:"category"`
	Reason      string                    `json:"reason"`
	Explanation string                    `json:"explanation,omitempty"`
}

// Statement is a FinancialStatement after normalization, with the audit trail.
type Statement struct {
	domain.FinancialStatement
	Applied []AppliedAdjustment `json:"applied"`
	Ignored []IgnoredAdjustment `json:"ignored"`
}

// EBITDelta is the total change applied to operating profit.
func (s Statement) EBITDelta() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Applied {
		total = total.Add(a.Delta)
	}
	return total
}

// Normalize replaces each targeted line item with its normalized value and
// recomputes EBIT and EBITDA by the cost difference. Adjustments with an
// unrecognized category are skipped and recorded as ignored. The input
// statement is not modified.
func Normalize(statement domain.FinancialStatement, adjustments []domain.NormalizationAdjustment) Statement {
	out := Statement{
		FinancialStatement: statement,
		Applied:            []AppliedAdjustment{},
		Ignored:            []IgnoredAdjustment{},
	}

	for _, adj := range adjustments {
		line, field := lineItem(&out.FinancialStatement, adj.Category)
		if line == nil {
			out.Ignored = append(out.Ignored, IgnoredAdjustment{
				Category:    adj.Category,
				Reason:      fmt.Sprintf("unrecognized category %q", adj.Category),
				Explanation: adj.Explanation,
			})
			continue
		}

		if reason := missingValue(*line, adj); reason != "" {
			out.Ignored = append(out.Ignored, IgnoredAdjustment{
				Category:    adj.Category,
				Reason:      reason,
				Explanation: adj.Explanation,
			})
			continue
		}

		original := line.Or(adj.OriginalValue.Value)
		normalized := adj.NormalizedValue.Value
		delta := original.Sub(normalized)
		*line = adj.NormalizedValue

		// Lower costs raise operating profit and vice versa.
		out.OperatingProfit = out.OperatingProfit.Add(delta)
		out.EBITDA = out.EBITDA.Add(delta)

		out.Applied = append(out.Applied, AppliedAdjustment{
			Category:    adj.Category,
			Field:       field,
			Original:    original,
			Normalized:  normalized,
			Delta:       delta,
			Explanation: adj.Explanation,
		})
	}

	return out
}

// missingValue explains why an adjustment lacks the figures it needs, or
// returns "" when it can be applied.
func missingValue(line domain.Amount, adj domain.NormalizationAdjustment) string {
	if !adj.NormalizedValue.Valid {
		return "missing normalized_value"
	}
	if !line.Valid && !adj.OriginalValue.Valid {
		return "line item and original_value both missing"
	}
	return ""
}

// LineItem returns the statement line an adjustment category replaces.
func LineItem(s domain.FinancialStatement, c domain.AdjustmentCategory) (domain.Amount, bool) {
	line, _ := lineItem(&s, c)
	if line == nil {
		return domain.Amount{}, false
	}
	return *line, true
}

func lineItem(s *domain.FinancialStatement, c domain.AdjustmentCategory) (*domain.Amount, string) {
	switch c {
	case domain.CategoryOwnerSalary:
		return &s.PersonnelCosts, FieldPersonnelCosts
	case domain.CategoryPremisesCosts:
		return &s.PremisesCosts, FieldPremisesCosts
	case domain.CategoryOther:
		return &s.OtherOperatingExpenses, FieldOtherOperatingExpenses
	}
	return nil, ""
}
