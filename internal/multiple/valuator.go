// Package multiple converts a normalized financial figure into enterprise
// and equity values using a market multiple range.
package multiple

import (
	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

var (
	// revenueDampingThreshold is the revenue multiple above which damping applies.
	revenueDampingThreshold = decimal.NewFromInt(3)
	revenueDampingFactor    = decimal.RequireFromString("0.5")
)

// EffectiveRevenueMultiplier returns min(3.0, m × 0.5) for m above 3.0, m otherwise.
func EffectiveRevenueMultiplier(m decimal.Decimal) decimal.Decimal {
	if m.LessThanOrEqual(revenueDampingThreshold) {
		return m
	}
	return domain.MinDecimal(revenueDampingThreshold, m.Mul(revenueDampingFactor))
}

// Valuate applies a multiplier range to base. It never fails: a missing or
// non-positive base marks the method unavailable with zero values.
func Valuate(method domain.Method, base domain.Amount, r domain.MultiplierRange, netDebt decimal.Decimal) domain.ValuationMethodResult {
	result := domain.ValuationMethodResult{
		Method:    method,
		BaseValue: base,
		NetDebt:   netDebt,
		EnterpriseValue: domain.Triple{
			Low: decimal.Zero, Mid: decimal.Zero, High: decimal.Zero,
		},
		EquityValue: domain.Triple{
			Low: decimal.Zero, Mid: decimal.Zero, High: decimal.Zero,
		},
	}

	switch {
	case !base.Valid:
		result.Reason = "base value unavailable"
		return result
	case !base.Value.IsPositive():
		if method.ProfitBased() {
			result.Reason = "non-positive profit"
		} else {
			result.Reason = "non-positive revenue"
		}
		return result
	}

	effective := func(m decimal.Decimal) decimal.Decimal {
		if method == domain.MethodRevenue {
			return EffectiveRevenueMultiplier(m)
		}
		return m
	}

	result.MultiplierUsed = domain.Triple{
		Low:  effective(r.Min),
		Mid:  effective(r.Avg),
		High: effective(r.Max),
	}
	result.EnterpriseValue = domain.Triple{
		Low:  domain.RoundEUR(base.Value.Mul(result.MultiplierUsed.Low)),
		Mid:  domain.RoundEUR(base.Value.Mul(result.MultiplierUsed.Mid)),
		High: domain.RoundEUR(base.Value.Mul(result.MultiplierUsed.High)),
	}
	result.EquityValue = domain.Triple{
		Low:  result.EnterpriseValue.Low.Sub(netDebt),
		Mid:  result.EnterpriseValue.Mid.Sub(netDebt),
		High: result.EnterpriseValue.High.Sub(netDebt),
	}
	result.Available = true
	return result
}

// ValuateAll runs the revenue, EV/EBIT and (when a range is supplied)
// EV/EBITDA methods against a normalized statement.
func ValuateAll(s domain.FinancialStatement, m domain.Multipliers, netDebt decimal.Decimal) []domain.ValuationMethodResult {
	results := []domain.ValuationMethodResult{
		Valuate(domain.MethodRevenue, s.Revenue, m.Revenue, netDebt),
		Valuate(domain.MethodEVEBIT, s.OperatingProfit, m.EVEBIT, netDebt),
	}
	if m.EVEBITDA != nil {
		results = append(results, Valuate(domain.MethodEVEBITDA, s.EBITDA, *m.EVEBITDA, netDebt))
	}
	return results
}
