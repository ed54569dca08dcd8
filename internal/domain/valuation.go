package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AdjustmentCategory identifies which line item a normalization adjustment targets.
type AdjustmentCategory string

const (
	CategoryOwnerSalary   AdjustmentCategory = "owner_salary"   // personnel_costs
	CategoryPremisesCosts AdjustmentCategory = "premises_costs" // premises_costs
	CategoryOther         AdjustmentCategory = "other"          // other_operating_expenses
)

// Known reports whether the category is one the normalizer applies.
func (c AdjustmentCategory) Known() bool {
	switch c {
	case CategoryOwnerSalary, CategoryPremisesCosts, CategoryOther:
		return true
	}
	return false
}

// NormalizationAdjustment is one human-answered clarification turned into a
// line-item replacement. Immutable once created. NormalizedValue is required;
// OriginalValue is only consulted when the statement lacks the line item.
type NormalizationAdjustment struct {
	Category        AdjustmentCategory `json:"category"`
	OriginalValue   Amount             `json:"original_value"`
	NormalizedValue Amount             `json:"normalized_value"`
	Explanation     string             `json:"explanation"`
}

// Method names a valuation method.
type Method string

const (
	MethodRevenue  Method = "revenue"
	MethodEVEBIT   Method = "ev_ebit"
	MethodEVEBITDA Method = "ev_ebitda"
	MethodDCF      Method = "dcf"
)

// ProfitBased reports whether the method is applied to a profit figure.
func (m Method) ProfitBased() bool {
	return m == MethodEVEBIT || m == MethodEVEBITDA
}

// MultiplierRange is an externally supplied market multiple range.
type MultiplierRange struct {
	Method        Method          `json:"method"`
	Min           decimal.Decimal `json:"min"`
	Avg           decimal.Decimal `json:"avg"`
	Max           decimal.Decimal `json:"max"`
	Justification string          `json:"justification,omitempty"`
	Source        string          `json:"source,omitempty"`
}

// Validate checks 0 <= min <= avg <= max.
func (r MultiplierRange) Validate() error {
	if r.Min.IsNegative() || r.Avg.IsNegative() || r.Max.IsNegative() {
		return fmt.Errorf("multipliers must be non-negative, got min=%s avg=%s max=%s", r.Min, r.Avg, r.Max)
	}
	if r.Min.GreaterThan(r.Avg) || r.Avg.GreaterThan(r.Max) {
		return fmt.Errorf("multipliers must satisfy min <= avg <= max, got min=%s avg=%s max=%s", r.Min, r.Avg, r.Max)
	}
	return nil
}

// Multipliers groups the ranges for each multiple-based method.
type Multipliers struct {
	Revenue  MultiplierRange  `json:"revenue"`
	EVEBIT   MultiplierRange  `json:"evEbit"`
	EVEBITDA *MultiplierRange `json:"evEbitda,omitempty"`
}

// Triple holds a figure computed at the min, avg and max multiple.
type Triple struct {
	Low  decimal.Decimal `json:"low"`
	Mid  decimal.Decimal `json:"mid"`
	High decimal.Decimal `json:"high"`
}

// Points returns the three values in low, mid, high order.
func (t Triple) Points() []decimal.Decimal {
	return []decimal.Decimal{t.Low, t.Mid, t.High}
}

// ValuationMethodResult is the outcome of applying one method.
type ValuationMethodResult struct {
	Method          Method          `json:"method"`
	BaseValue       Amount          `json:"base_value"`
	MultiplierUsed  Triple          `json:"multiplier_used"`
	EnterpriseValue Triple          `json:"enterprise_value"`
	EquityValue     Triple          `json:"equity_value"`
	Available       bool            `json:"available"`
	Reason          string          `json:"reason,omitempty"`
	NetDebt         decimal.Decimal `json:"net_debt"`
}

// ValuationRange is the reported envelope.
type ValuationRange struct {
	Low  decimal.Decimal `json:"low"`
	Base decimal.Decimal `json:"base"`
	High decimal.Decimal `json:"high"`
}

// ScenarioName identifies one of the three probability-weighted scenarios.
type ScenarioName string

const (
	ScenarioPessimistic ScenarioName = "pessimistic"
	ScenarioBase        ScenarioName = "base"
	ScenarioOptimistic  ScenarioName = "optimistic"
)

// ScenarioValues are the equity values of the three scenarios.
type ScenarioValues struct {
	Pessimistic decimal.Decimal `json:"pessimistic"`
	Base        decimal.Decimal `json:"base"`
	Optimistic  decimal.Decimal `json:"optimistic"`
}

// ProbabilityWeightedValuation is the 20/60/20 weighted equity estimate.
type ProbabilityWeightedValuation struct {
	WeightedEquityValue decimal.Decimal `json:"weighted_equity_value"`
	ScenarioValues      ScenarioValues  `json:"scenario_values"`
}

// Substance is the net asset value of a statement.
type Substance struct {
	Value      decimal.Decimal `json:"value"`
	IsNegative bool            `json:"is_substance_negative"`
}

// Variant selects how the scenario DCF is presented.
type Variant string

const (
	VariantFull           Variant = "full"
	VariantSimplified     Variant = "simplified"
	VariantForwardLooking Variant = "forward_looking"
)
