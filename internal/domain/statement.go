package domain

import "fmt"

// FinancialStatement holds the figures extracted from one fiscal period's
// financial statements (tilinpäätös). All figures are EUR.
type FinancialStatement struct {
	FiscalYear int `json:"fiscal_year,omitempty"`

	Revenue         Amount `json:"revenue"`          // liikevaihto
	OperatingProfit Amount `json:"operating_profit"` // liikevoitto (EBIT)
	EBITDA          Amount `json:"ebitda"`           // käyttökate, optional

	PersonnelCosts         Amount `json:"personnel_costs"`
	PremisesCosts          Amount `json:"premises_costs"`
	OtherOperatingExpenses Amount `json:"other_operating_expenses"`

	FixedAssets          Amount `json:"fixed_assets"`
	CurrentAssets        Amount `json:"current_assets"`
	ShortTermLiabilities Amount `json:"short_term_liabilities"`
	LongTermLiabilities  Amount `json:"long_term_liabilities"`
}

// FieldProblem describes a single missing or invalid input field.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p FieldProblem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// MissingRequired lists required figures that are unavailable. prefix is
// prepended to field names (e.g. "statement.").
func (s FinancialStatement) MissingRequired(prefix string) []FieldProblem {
	required := []struct {
		name string
		v    Amount
	}{
		{"revenue", s.Revenue},
		{"operating_profit", s.OperatingProfit},
		{"fixed_assets", s.FixedAssets},
		{"current_assets", s.CurrentAssets},
		{"short_term_liabilities", s.ShortTermLiabilities},
		{"long_term_liabilities", s.LongTermLiabilities},
	}

	var problems []FieldProblem
	for _, r := range required {
		if !r.v.Valid {
			problems = append(problems, FieldProblem{Field: prefix + r.name, Message: "required"})
		}
	}
	return problems
}

// Complete reports whether every required figure is present.
func (s FinancialStatement) Complete() bool {
	return len(s.MissingRequired("")) == 0
}
