package multiple

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func rng(method domain.Method, min, avg, max string) domain.MultiplierRange {
	return domain.MultiplierRange{Method: method, Min: d(min), Avg: d(avg), Max: d(max)}
}

func TestEffectiveRevenueMultiplier(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"0.8", "0.8"},
		{"3.0", "3.0"},
		{"3.2", "1.6"},
		{"4.0", "2.0"},
		{"6.0", "3.0"},
		{"10", "3"},
	}
	for _, tt := range tests {
		got := EffectiveRevenueMultiplier(d(tt.raw))
		if !got.Equal(d(tt.want)) {
			t.Errorf("EffectiveRevenueMultiplier(%s) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestValuateRevenueLossMaking(t *testing.T) {
	netDebt := d("100000")
	res := Valuate(domain.MethodRevenue, domain.AmountFromInt(1_000_000), rng(domain.MethodRevenue, "0.5", "0.8", "1.2"), netDebt)

	if !res.Available {
		t.Fatalf("revenue method should be available, reason=%q", res.Reason)
	}
	want := []string{"400000", "700000", "1100000"}
	for i, got := range res.EquityValue.Points() {
		if !got.Equal(d(want[i])) {
			t.Errorf("equity[%d] = %s, want %s", i, got, want[i])
		}
	}
	if !res.EnterpriseValue.High.Equal(d("1200000")) {
		t.Errorf("EV high = %s, want 1200000", res.EnterpriseValue.High)
	}
}

func TestValuateRevenueDamping(t *testing.T) {
	res := Valuate(domain.MethodRevenue, domain.AmountFromInt(1_000_000), rng(domain.MethodRevenue, "1.0", "2.0", "4.0"), decimal.Zero)
	if !res.MultiplierUsed.High.Equal(d("2.0")) {
		t.Errorf("effective max multiplier = %s, want 2.0", res.MultiplierUsed.High)
	}
	if !res.EnterpriseValue.High.Equal(d("2000000")) {
		t.Errorf("EV high = %s, want 2000000", res.EnterpriseValue.High)
	}
	if !res.MultiplierUsed.Mid.Equal(d("2.0")) {
		t.Errorf("avg at 2.0 should not be damped, got %s", res.MultiplierUsed.Mid)
	}
}

func TestValuateEBITNotDamped(t *testing.T) {
	res := Valuate(domain.MethodEVEBIT, domain.AmountFromInt(100_000), rng(domain.MethodEVEBIT, "4", "5", "6"), decimal.Zero)
	if !res.MultiplierUsed.High.Equal(d("6")) {
		t.Errorf("EV/EBIT multiplier = %s, want raw 6", res.MultiplierUsed.High)
	}
	if !res.EquityValue.High.Equal(d("600000")) {
		t.Errorf("equity high = %s, want 600000", res.EquityValue.High)
	}
}

func TestValuateUnavailable(t *testing.T) {
	r := rng(domain.MethodEVEBIT, "4", "5", "6")
	tests := []struct {
		name   string
		method domain.Method
		base   domain.Amount
	}{
		{"negative EBIT", domain.MethodEVEBIT, domain.AmountFromInt(-50_000)},
		{"zero EBIT", domain.MethodEVEBIT, domain.AmountFromInt(0)},
		{"negative EBITDA", domain.MethodEVEBITDA, domain.AmountFromInt(-1)},
		{"missing EBITDA", domain.MethodEVEBITDA, domain.Unavailable()},
		{"zero revenue", domain.MethodRevenue, domain.AmountFromInt(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Valuate(tt.method, tt.base, r, d("100000"))
			if res.Available {
				t.Fatal("expected unavailable")
			}
			if res.Reason == "" {
				t.Error("expected a reason")
			}
			for _, v := range res.EquityValue.Points() {
				if !v.IsZero() {
					t.Errorf("equity = %s, want 0", v)
				}
			}
		})
	}
}

func TestValuateIdempotent(t *testing.T) {
	base := domain.AmountFromInt(345_678)
	r := rng(domain.MethodRevenue, "1.1", "2.7", "5.5")
	first, _ := json.Marshal(Valuate(domain.MethodRevenue, base, r, d("12345")))
	second, _ := json.Marshal(Valuate(domain.MethodRevenue, base, r, d("12345")))
	if !bytes.Equal(first, second) {
		t.Errorf("Valuate not deterministic:\n%s\n%s", first, second)
	}
}

func TestValuateAll(t *testing.T) {
	s := domain.FinancialStatement{
		Revenue:         domain.AmountFromInt(1_000_000),
		OperatingProfit: domain.AmountFromInt(-50_000),
	}
	m := domain.Multipliers{
		Revenue: rng(domain.MethodRevenue, "0.5", "0.8", "1.2"),
		EVEBIT:  rng(domain.MethodEVEBIT, "4", "5", "6"),
	}

	results := ValuateAll(s, m, d("100000"))
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (no EBITDA range)", len(results))
	}
	if results[1].Method != domain.MethodEVEBIT || results[1].Available {
		t.Errorf("EV/EBIT result = %+v, want unavailable", results[1])
	}

	ebitda := rng(domain.MethodEVEBITDA, "3", "4", "5")
	m.EVEBITDA = &ebitda
	results = ValuateAll(s, m, d("100000"))
	if len(results) != 3 || results[2].Method != domain.MethodEVEBITDA {
		t.Fatalf("expected EV/EBITDA result as third, got %+v", results)
	}
	if results[2].Available {
		t.Error("EV/EBITDA without EBITDA must be unavailable")
	}
}
