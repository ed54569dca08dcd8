package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/dcf"
	"github.com/valuatum/myyntikunto/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func lossMakingInput() Input {
	return Input{
		Statement: domain.FinancialStatement{
			FiscalYear:           2024,
			Revenue:              domain.AmountFromInt(1_000_000),
			OperatingProfit:      domain.AmountFromInt(-50_000),
			FixedAssets:          domain.AmountFromInt(200_000),
			CurrentAssets:        domain.AmountFromInt(150_000),
			ShortTermLiabilities: domain.AmountFromInt(100_000),
			LongTermLiabilities:  domain.AmountFromInt(50_000),
		},
		Multipliers: domain.Multipliers{
			Revenue: domain.MultiplierRange{Method: domain.MethodRevenue, Min: d("0.5"), Avg: d("0.8"), Max: d("1.2")},
			EVEBIT:  domain.MultiplierRange{Method: domain.MethodEVEBIT, Min: d("4"), Avg: d("5"), Max: d("6")},
		},
		NetDebt: domain.AmountFromInt(100_000),
	}
}

func TestRunLossMakingExample(t *testing.T) {
	out, err := NewDefault().Run(lossMakingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.MethodResults) != 2 {
		t.Fatalf("method results = %d, want 2", len(out.MethodResults))
	}
	rev, ebit := out.MethodResults[0], out.MethodResults[1]
	if !rev.Available || ebit.Available {
		t.Errorf("availability revenue=%v ebit=%v, want true/false", rev.Available, ebit.Available)
	}
	if !ebit.EquityValue.Mid.IsZero() {
		t.Errorf("unavailable EBIT equity = %s, want 0", ebit.EquityValue.Mid)
	}

	r := out.ValuationRange
	if !r.Low.IsZero() || !r.High.Equal(d("1100000")) || !r.Base.Equal(d("700000")) {
		t.Errorf("range = %s/%s/%s, want 0/700000/1100000", r.Low, r.Base, r.High)
	}
	if !out.Substance.Value.Equal(d("200000")) {
		t.Errorf("substance = %s, want 200000", out.Substance.Value)
	}
	if out.Variant != domain.VariantForwardLooking || out.Confidence != 2 {
		t.Errorf("variant = %s confidence = %d, want forward_looking/2", out.Variant, out.Confidence)
	}

	v := out.ProbabilityWeighted.ScenarioValues
	want := v.Pessimistic.Mul(d("0.2")).Add(v.Base.Mul(d("0.6"))).Add(v.Optimistic.Mul(d("0.2"))).Round(0)
	if !out.ProbabilityWeighted.WeightedEquityValue.Equal(want) {
		t.Errorf("weighted = %s, want %s", out.ProbabilityWeighted.WeightedEquityValue, want)
	}
}

func TestRunAppliesNormalizationBeforeValuation(t *testing.T) {
	in := lossMakingInput()
	in.Statement.OperatingProfit = domain.AmountFromInt(20_000)
	in.Statement.PersonnelCosts = domain.AmountFromInt(200_000)
	in.Adjustments = []domain.NormalizationAdjustment{
		{Category: domain.CategoryOwnerSalary, OriginalValue: domain.NewAmount(d("200000")), NormalizedValue: domain.NewAmount(d("150000"))},
		{Category: "mystery", OriginalValue: domain.NewAmount(d("1")), NormalizedValue: domain.NewAmount(d("2"))},
	}

	out, err := NewDefault().Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ebit := out.MethodResults[1]
	if !ebit.BaseValue.Value.Equal(d("70000")) {
		t.Errorf("EV/EBIT base = %s, want normalized 70000", ebit.BaseValue)
	}
	if !ebit.EquityValue.Mid.Equal(d("250000")) {
		t.Errorf("EV/EBIT mid equity = %s, want 70000×5−100000 = 250000", ebit.EquityValue.Mid)
	}
	if len(out.Normalized.Ignored) != 1 {
		t.Errorf("ignored = %d, want 1", len(out.Normalized.Ignored))
	}
}

func TestRunFullVariantAddsDCF(t *testing.T) {
	in := lossMakingInput()
	in.Statement.OperatingProfit = domain.AmountFromInt(150_000)
	for _, year := range []int{2020, 2021, 2022, 2023} {
		h := in.Statement
		h.FiscalYear = year
		in.History = append(in.History, h)
	}

	out, err := NewDefault().Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Variant != domain.VariantFull {
		t.Fatalf("variant = %s, want full", out.Variant)
	}
	last := out.MethodResults[len(out.MethodResults)-1]
	if last.Method != domain.MethodDCF {
		t.Errorf("last method = %s, want dcf", last.Method)
	}
	if !last.EquityValue.Mid.Equal(out.ProbabilityWeighted.ScenarioValues.Base) {
		t.Errorf("dcf mid %s differs from base scenario %s", last.EquityValue.Mid, out.ProbabilityWeighted.ScenarioValues.Base)
	}
}

func TestRunValidationError(t *testing.T) {
	in := lossMakingInput()
	in.Statement.Revenue = domain.Unavailable()
	in.NetDebt = domain.Unavailable()
	in.Multipliers.EVEBIT.Min = d("7")

	_, err := NewDefault().Run(in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !IsValidation(err) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	ve := err.(*ValidationError)
	fields := map[string]bool{}
	for _, p := range ve.Problems {
		fields[p.Field] = true
	}
	for _, f := range []string{"statement.revenue", "netDebt", "multipliers.evEbit"} {
		if !fields[f] {
			t.Errorf("missing problem for %s in %v", f, ve.Problems)
		}
	}
}

func TestRunDecodesRequestJSON(t *testing.T) {
	body := `{
		"statement": {"revenue": 1000000, "operating_profit": -50000,
			"fixed_assets": 0, "current_assets": 0, "short_term_liabilities": 0, "long_term_liabilities": 0},
		"adjustments": [],
		"multipliers": {
			"revenue": {"method": "revenue", "min": 0.5, "avg": 0.8, "max": 1.2},
			"evEbit": {"method": "ev_ebit", "min": 4, "avg": 5, "max": 6}
		},
		"netDebt": 100000
	}`
	var in Input
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	out, err := NewDefault().Run(in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.ValuationRange.High.Equal(d("1100000")) {
		t.Errorf("high = %s, want 1100000", out.ValuationRange.High)
	}
}

func TestRunDeterministicUnderConcurrency(t *testing.T) {
	eng := NewDefault()
	in := lossMakingInput()
	first, err := eng.Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := json.Marshal(first)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := eng.Run(in)
			if err != nil {
				errs <- err.Error()
				return
			}
			got, _ := json.Marshal(out)
			if !bytes.Equal(got, want) {
				errs <- "output differs between runs"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestReliableYears(t *testing.T) {
	current := lossMakingInput().Statement
	complete := current
	complete.FiscalYear = 2023
	duplicate := complete
	incomplete := domain.FinancialStatement{FiscalYear: 2022, Revenue: domain.AmountFromInt(5)}

	got := ReliableYears(current, []domain.FinancialStatement{complete, duplicate, incomplete})
	if got != 2 {
		t.Errorf("ReliableYears = %d, want 2", got)
	}
}

func TestSummary(t *testing.T) {
	out, err := NewDefault().Run(lossMakingInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Summary(out)
	for _, want := range []string{"range 0–1100000", "base 700000", "variant forward_looking"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary = %q, missing %q", got, want)
		}
	}
}

func TestRunRejectsAdjustmentWithoutValues(t *testing.T) {
	body := `{
		"statement": {"revenue": 1000000, "operating_profit": 20000, "personnel_costs": 200000,
			"fixed_assets": 0, "current_assets": 0, "short_term_liabilities": 0, "long_term_liabilities": 0},
		"adjustments": [
			{"category": "owner_salary", "explanation": "unclear"},
			{"category": "other", "normalized_value": 5000}
		],
		"multipliers": {
			"revenue": {"min": 0.5, "avg": 0.8, "max": 1.2},
			"evEbit": {"min": 4, "avg": 5, "max": 6}
		},
		"netDebt": 0
	}`
	var in Input
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode: %v", err)
	}

	_, err := NewDefault().Run(in)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	fields := map[string]bool{}
	for _, p := range ve.Problems {
		fields[p.Field] = true
	}
	for _, f := range []string{"adjustments[0].normalized_value", "adjustments[1].original_value"} {
		if !fields[f] {
			t.Errorf("missing problem for %s in %v", f, ve.Problems)
		}
	}
	if fields["adjustments[0].original_value"] {
		t.Error("original_value reported although the statement has personnel_costs")
	}
}

func TestRunIgnoresHistoryWithoutFiscalYear(t *testing.T) {
	in := lossMakingInput()
	for range 4 {
		h := in.Statement
		h.FiscalYear = 0
		in.History = append(in.History, h)
	}

	if got := ReliableYears(in.Statement, in.History); got != 1 {
		t.Errorf("ReliableYears = %d, want 1", got)
	}
	out, err := NewDefault().Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Variant != domain.VariantForwardLooking || out.Confidence != 2 {
		t.Errorf("variant = %s confidence = %d, want forward_looking/2", out.Variant, out.Confidence)
	}
}

func TestRunMergesPartialDCFOverrides(t *testing.T) {
	in := lossMakingInput()
	in.Statement.OperatingProfit = domain.AmountFromInt(150_000)
	if err := json.Unmarshal([]byte(`{"wacc": 0.10}`), &in.DCF); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got, err := NewDefault().Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := dcf.DefaultParams()
	params.WACC = d("0.10")
	in.DCF = nil
	want, err := New(params, dcf.DefaultScenarios()).Run(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Scenarios.Base.EnterpriseValue.Equal(want.Scenarios.Base.EnterpriseValue) {
		t.Errorf("base EV = %s, want %s with the other defaults kept", got.Scenarios.Base.EnterpriseValue, want.Scenarios.Base.EnterpriseValue)
	}
	if !got.Scenarios.Base.PVTerminal.IsPositive() {
		t.Errorf("PV terminal = %s, want positive", got.Scenarios.Base.PVTerminal)
	}
}

func TestRunRejectsInvalidDefaults(t *testing.T) {
	params := dcf.DefaultParams()
	params.WACC = d("-1")
	_, err := New(params, dcf.DefaultScenarios()).Run(lossMakingInput())
	if !IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}
