package dcf

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var flat = Assumptions{RevenueGrowth: decimal.Zero, MarginAdjustment: decimal.Zero}

func TestProjectSimplified(t *testing.T) {
	base := Base{Revenue: d("1000000"), EBIT: d("100000")}
	res := Project(domain.ScenarioBase, base, flat, domain.VariantSimplified, DefaultParams(), decimal.Zero)

	if len(res.Years) != 3 {
		t.Fatalf("years = %d, want 3", len(res.Years))
	}
	// FCF = 100000 × 0.8 × 0.7
	if !res.Years[0].FreeCashFlow.Equal(d("56000")) {
		t.Errorf("FCF = %s, want 56000", res.Years[0].FreeCashFlow)
	}
	if !res.EnterpriseValue.Equal(d("541071")) {
		t.Errorf("EV = %s, want 541071", res.EnterpriseValue)
	}
}

func TestProjectPerpetuityIdentity(t *testing.T) {
	// With no growth anywhere, a 5-year projection plus terminal value equals FCF / WACC.
	p := DefaultParams()
	p.WACC = d("0.10")
	p.TerminalGrowth = decimal.Zero
	base := Base{Revenue: d("1000000"), EBIT: d("100000")}

	res := Project(domain.ScenarioBase, base, flat, domain.VariantFull, p, d("60000"))
	if !res.EnterpriseValue.Equal(d("560000")) {
		t.Errorf("EV = %s, want 560000", res.EnterpriseValue)
	}
	if !res.EquityValue.Equal(d("500000")) {
		t.Errorf("equity = %s, want 500000", res.EquityValue)
	}
}

func TestProjectForwardLookingUsesBaselineMargin(t *testing.T) {
	base := Base{Revenue: d("1000000"), EBIT: d("-50000")}
	res := Project(domain.ScenarioBase, base, flat, domain.VariantForwardLooking, DefaultParams(), decimal.Zero)
	if !res.Margin.Equal(d("0.08")) {
		t.Errorf("margin = %s, want forward margin 0.08", res.Margin)
	}
	if len(res.Years) != 5 {
		t.Errorf("years = %d, want 5", len(res.Years))
	}
	if !res.EnterpriseValue.IsPositive() {
		t.Errorf("EV = %s, want positive", res.EnterpriseValue)
	}
}

func TestProjectNoTerminalWhenGrowthExceedsWACC(t *testing.T) {
	p := DefaultParams()
	p.TerminalGrowth = d("0.15")
	res := Project(domain.ScenarioBase, Base{Revenue: d("1000000"), EBIT: d("100000")}, flat, domain.VariantFull, p, decimal.Zero)
	if !res.PVTerminal.IsZero() {
		t.Errorf("PV terminal = %s, want 0", res.PVTerminal)
	}
}

func TestRunScenarioOrdering(t *testing.T) {
	base := Base{Revenue: d("2000000"), EBIT: d("200000")}
	res := Run(base, DefaultScenarios(), domain.VariantFull, DefaultParams(), d("100000"))

	v := res.Values()
	if !v.Pessimistic.LessThan(v.Base) || !v.Base.LessThan(v.Optimistic) {
		t.Errorf("scenario values not ordered: %s / %s / %s", v.Pessimistic, v.Base, v.Optimistic)
	}

	m := res.MethodResult(d("100000"))
	if m.Method != domain.MethodDCF || !m.Available {
		t.Errorf("method result = %+v, want available dcf", m)
	}
	if !m.EquityValue.Mid.Equal(v.Base) {
		t.Errorf("method mid = %s, want base scenario %s", m.EquityValue.Mid, v.Base)
	}
}

func TestMethodResultUnavailableForLosses(t *testing.T) {
	base := Base{Revenue: d("1000000"), EBIT: d("-100000")}
	res := Run(base, DefaultScenarios(), domain.VariantFull, DefaultParams(), decimal.Zero)
	if m := res.MethodResult(decimal.Zero); m.Available {
		t.Errorf("loss-making DCF should be unavailable, got %+v", m)
	}
}

func TestParamsValidate(t *testing.T) {
	p := DefaultParams()
	if problems := p.Validate(); len(problems) != 0 {
		t.Errorf("defaults invalid: %v", problems)
	}
	p.WACC = decimal.Zero
	p.TaxRate = d("1")
	p.ReinvestmentRate = d("-0.1")
	if problems := p.Validate(); len(problems) != 3 {
		t.Errorf("expected 3 problems, got %v", problems)
	}
}
