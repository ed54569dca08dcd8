// Package aggregate combines method results and the substance value into the
// reported valuation range and the probability-weighted estimate.
package aggregate

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

// Scenario weights. Fixed by contract, not configurable.
var (
	WeightPessimistic = decimal.RequireFromString("0.2")
	WeightBase        = decimal.RequireFromString("0.6")
	WeightOptimistic  = decimal.RequireFromString("0.2")
)

// Substance returns total assets minus total liabilities.
func Substance(s domain.FinancialStatement) domain.Substance {
	assets := s.FixedAssets.Or(decimal.Zero).Add(s.CurrentAssets.Or(decimal.Zero))
	liabilities := s.ShortTermLiabilities.Or(decimal.Zero).Add(s.LongTermLiabilities.Or(decimal.Zero))
	v := assets.Sub(liabilities)
	return domain.Substance{Value: v, IsNegative: v.IsNegative()}
}

// Range builds the low/base/high envelope. low = min(substance, 0); high is the
// largest positive equity value of any available method, or max(substance, 0)
// when none exists; base is the mean mid equity value clamped into [low, high].
func Range(substance decimal.Decimal, results []domain.ValuationMethodResult) domain.ValuationRange {
	available := lo.Filter(results, func(r domain.ValuationMethodResult, _ int) bool {
		return r.Available
	})

	low := domain.MinDecimal(substance, decimal.Zero)

	positives := lo.Filter(lo.FlatMap(available, func(r domain.ValuationMethodResult, _ int) []decimal.Decimal {
		return r.EquityValue.Points()
	}), func(v decimal.Decimal, _ int) bool {
		return v.IsPositive()
	})

	high := domain.MaxDecimal(substance, decimal.Zero)
	if len(positives) > 0 {
		high = lo.MaxBy(positives, func(a, b decimal.Decimal) bool { return a.GreaterThan(b) })
	}

	base := substance
	if len(available) > 0 {
		mids := lo.Map(available, func(r domain.ValuationMethodResult, _ int) decimal.Decimal {
			return r.EquityValue.Mid
		})
		base = domain.RoundEUR(decimal.Sum(mids[0], mids[1:]...).Div(decimal.NewFromInt(int64(len(mids)))))
	}
	base = domain.Clamp(base, low, high)

	return domain.ValuationRange{Low: low, Base: base, High: high}
}

// Weighted returns 0.2×pessimistic + 0.6×base + 0.2×optimistic in whole euros.
func Weighted(v domain.ScenarioValues) domain.ProbabilityWeightedValuation {
	weighted := v.Pessimistic.Mul(WeightPessimistic).
		Add(v.Base.Mul(WeightBase)).
		Add(v.Optimistic.Mul(WeightOptimistic))
	return domain.ProbabilityWeightedValuation{
		WeightedEquityValue: domain.RoundEUR(weighted),
		ScenarioValues:      v,
	}
}

// Confidence converts the number of years of reliable historical data into a
// 0–10 score, two points per year.
func Confidence(reliableYears int) int {
	return max(0, min(10, 2*reliableYears))
}

// SelectVariant picks the DCF presentation for a confidence score.
func SelectVariant(score int) domain.Variant {
	switch {
	case score >= 8:
		return domain.VariantFull
	case score >= 5:
		return domain.VariantSimplified
	default:
		return domain.VariantForwardLooking
	}
}
