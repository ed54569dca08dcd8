// Package dcf projects free cash flows for the three named scenarios and
// discounts them into enterprise and equity values.
package dcf

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

var one = decimal.NewFromInt(1)

// Assumptions are the scenario-specific drivers.
type Assumptions struct {
	RevenueGrowth    decimal.Decimal `json:"revenue_growth"`    // annual, e.g. 0.03
	MarginAdjustment decimal.Decimal `json:"margin_adjustment"` // added to the starting EBIT margin
}

// Scenarios holds assumptions for pessimistic, base and optimistic cases.
type Scenarios struct {
	Pessimistic Assumptions `json:"pessimistic"`
	Base        Assumptions `json:"base"`
	Optimistic  Assumptions `json:"optimistic"`
}

// DefaultScenarios returns the assumptions used when a request supplies none.
func DefaultScenarios() Scenarios {
	return Scenarios{
		Pessimistic: Assumptions{RevenueGrowth: decimal.RequireFromString("-0.05"), MarginAdjustment: decimal.RequireFromString("-0.02")},
		Base:        Assumptions{RevenueGrowth: decimal.RequireFromString("0.02"), MarginAdjustment: decimal.Zero},
		Optimistic:  Assumptions{RevenueGrowth: decimal.RequireFromString("0.06"), MarginAdjustment: decimal.RequireFromString("0.02")},
	}
}

// Params are the discounting parameters shared by all scenarios.
type Params struct {
	WACC             decimal.Decimal `json:"wacc"`
	TerminalGrowth   decimal.Decimal `json:"terminal_growth"`
	TaxRate          decimal.Decimal `json:"tax_rate"`
	ReinvestmentRate decimal.Decimal `json:"reinvestment_rate"`
	ForwardMargin    decimal.Decimal `json:"forward_margin"` // starting margin when history is unreliable
}

// DefaultParams returns conservative SME defaults: 12 % WACC, 2 % terminal
// growth, 20 % Finnish corporate tax, 30 % reinvestment, 8 % forward margin.
func DefaultParams() Params {
	return Params{
		WACC:             decimal.RequireFromString("0.12"),
		TerminalGrowth:   decimal.RequireFromString("0.02"),
		TaxRate:          decimal.RequireFromString("0.20"),
		ReinvestmentRate: decimal.RequireFromString("0.30"),
		ForwardMargin:    decimal.RequireFromString("0.08"),
	}
}

// Overrides are per-request parameter changes. Omitted or null fields keep
// the engine default.
type Overrides struct {
	WACC             domain.Amount `json:"wacc"`
	TerminalGrowth   domain.Amount `json:"terminal_growth"`
	TaxRate          domain.Amount `json:"tax_rate"`
	ReinvestmentRate domain.Amount `json:"reinvestment_rate"`
	ForwardMargin    domain.Amount `json:"forward_margin"`
}

// Apply returns p with every present override replacing its field.
func (o Overrides) Apply(p Params) Params {
	return Params{
		WACC:             o.WACC.Or(p.WACC),
		TerminalGrowth:   o.TerminalGrowth.Or(p.TerminalGrowth),
		TaxRate:          o.TaxRate.Or(p.TaxRate),
		ReinvestmentRate: o.ReinvestmentRate.Or(p.ReinvestmentRate),
		ForwardMargin:    o.ForwardMargin.Or(p.ForwardMargin),
	}
}

// Validate reports parameter combinations that cannot be discounted.
func (p Params) Validate() []domain.FieldProblem {
	var problems []domain.FieldProblem
	if !p.WACC.IsPositive() {
		problems = append(problems, domain.FieldProblem{Field: "dcf.wacc", Message: "must be positive"})
	}
	if p.TaxRate.IsNegative() || p.TaxRate.GreaterThanOrEqual(one) {
		problems = append(problems, domain.FieldProblem{Field: "dcf.tax_rate", Message: "must be in [0, 1)"})
	}
	if p.ReinvestmentRate.IsNegative() || p.ReinvestmentRate.GreaterThan(one) {
		problems = append(problems, domain.FieldProblem{Field: "dcf.reinvestment_rate", Message: "must be in [0, 1]"})
	}
	return problems
}

// Horizon returns the number of explicit projection years for a variant.
func Horizon(v domain.Variant) int {
	if v == domain.VariantSimplified {
		return 3
	}
	return 5
}

// Base is the normalized starting point of a projection.
type Base struct {
	Revenue decimal.Decimal
	EBIT    decimal.Decimal
}

// Margin is EBIT / revenue, or zero without revenue.
func (b Base) Margin() decimal.Decimal {
	if !b.Revenue.IsPositive() {
		return decimal.Zero
	}
	return b.EBIT.Div(b.Revenue)
}

// Year is one explicit projection year.
type Year struct {
	Year         int             `json:"year"`
	Revenue      decimal.Decimal `json:"revenue"`
	EBIT         decimal.Decimal `json:"ebit"`
	FreeCashFlow decimal.Decimal `json:"free_cash_flow"`
	PresentValue decimal.Decimal `json:"present_value"`
}

// Result is the DCF outcome of a single scenario.
type Result struct {
	Scenario        domain.ScenarioName `json:"scenario"`
	Margin          decimal.Decimal     `json:"margin"`
	Years           []Year              `json:"years"`
	PVFreeCashFlow  decimal.Decimal     `json:"pv_free_cash_flow"`
	PVTerminal      decimal.Decimal     `json:"pv_terminal"`
	EnterpriseValue decimal.Decimal     `json:"enterprise_value"`
	EquityValue     decimal.Decimal     `json:"equity_value"`
}

// Project runs a two-stage DCF for one scenario.
func Project(name domain.ScenarioName, base Base, a Assumptions, variant domain.Variant, p Params, netDebt decimal.Decimal) Result {
	startMargin := base.Margin()
	if variant == domain.VariantForwardLooking {
		startMargin = p.ForwardMargin
	}
	margin := startMargin.Add(a.MarginAdjustment)

	afterTax := one.Sub(p.TaxRate)
	retained := one.Sub(p.ReinvestmentRate)

	res := Result{Scenario: name, Margin: margin}

	revenue := base.Revenue
	discount := one
	pvFCF := decimal.Zero
	var lastFCF decimal.Decimal

	for y := 1; y <= Horizon(variant); y++ {
		revenue = revenue.Mul(one.Add(a.RevenueGrowth))
		ebit := revenue.Mul(margin)
		fcf := ebit.Mul(afterTax).Mul(retained)

		discount = discount.Div(one.Add(p.WACC))
		pv := fcf.Mul(discount)
		pvFCF = pvFCF.Add(pv)
		lastFCF = fcf

		res.Years = append(res.Years, Year{
			Year:         y,
			Revenue:      domain.RoundEUR(revenue),
			EBIT:         domain.RoundEUR(ebit),
			FreeCashFlow: domain.RoundEUR(fcf),
			PresentValue: domain.RoundEUR(pv),
		})
	}

	// Gordon growth terminal value, only when WACC exceeds terminal growth.
	pvTerminal := decimal.Zero
	if p.WACC.GreaterThan(p.TerminalGrowth) {
		tv := lastFCF.Mul(one.Add(p.TerminalGrowth)).Div(p.WACC.Sub(p.TerminalGrowth))
		pvTerminal = tv.Mul(discount)
	}

	ev := pvFCF.Add(pvTerminal)
	res.PVFreeCashFlow = domain.RoundEUR(pvFCF)
	res.PVTerminal = domain.RoundEUR(pvTerminal)
	res.EnterpriseValue = domain.RoundEUR(ev)
	res.EquityValue = res.EnterpriseValue.Sub(netDebt)
	return res
}

// ScenarioResults holds the three scenario projections.
type ScenarioResults struct {
	Variant     domain.Variant `json:"variant"`
	Pessimistic Result         `json:"pessimistic"`
	Base        Result         `json:"base"`
	Optimistic  Result         `json:"optimistic"`
}

// Values returns the scenario equity values for probability weighting.
func (r ScenarioResults) Values() domain.ScenarioValues {
	return domain.ScenarioValues{
		Pessimistic: r.Pessimistic.EquityValue,
		Base:        r.Base.EquityValue,
		Optimistic:  r.Optimistic.EquityValue,
	}
}

// MethodResult expresses the scenario DCF as a valuation method, with the
// pessimistic, base and optimistic values as its low, mid and high points.
func (r ScenarioResults) MethodResult(netDebt decimal.Decimal) domain.ValuationMethodResult {
	res := domain.ValuationMethodResult{
		Method:    domain.MethodDCF,
		BaseValue: domain.NewAmount(r.Base.EnterpriseValue),
		NetDebt:   netDebt,
		EnterpriseValue: domain.Triple{
			Low:  r.Pessimistic.EnterpriseValue,
			Mid:  r.Base.EnterpriseValue,
			High: r.Optimistic.EnterpriseValue,
		},
		EquityValue: domain.Triple{
			Low:  r.Pessimistic.EquityValue,
			Mid:  r.Base.EquityValue,
			High: r.Optimistic.EquityValue,
		},
		Available: r.Base.EnterpriseValue.IsPositive(),
	}
	if !res.Available {
		res.Reason = fmt.Sprintf("non-positive base scenario enterprise value %s", r.Base.EnterpriseValue)
	}
	return res
}

// Run projects all three scenarios.
func Run(base Base, s Scenarios, variant domain.Variant, p Params, netDebt decimal.Decimal) ScenarioResults {
	return ScenarioResults{
		Variant:     variant,
		Pessimistic: Project(domain.ScenarioPessimistic, base, s.Pessimistic, variant, p, netDebt),
		Base:        Project(domain.ScenarioBase, base, s.Base, variant, p, netDebt),
		Optimistic:  Project(domain.ScenarioOptimistic, base, s.Optimistic, variant, p, netDebt),
	}
}
