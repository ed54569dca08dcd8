// Package engine runs the valuation pipeline: validate, normalize, valuate
// with multiples, project scenarios and aggregate. Run is a pure function of
// its input and safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/valuatum/myyntikunto/internal/aggregate"
	"github.com/valuatum/myyntikunto/internal/dcf"
	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/multiple"
	"github.com/valuatum/myyntikunto/internal/normalize"
)

// ValidationError lists every malformed input field.
type ValidationError struct {
	Problems []domain.FieldProblem
}

func (e *ValidationError) Error() string {
	msgs := lo.Map(e.Problems, func(p domain.FieldProblem, _ int) string { return p.String() })
	return "invalid valuation input: " + strings.Join(msgs, "; ")
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Input is one valuation request.
type Input struct {
	Statement   domain.FinancialStatement        `json:"statement"`
	Adjustments []domain.NormalizationAdjustment `json:"adjustments"`
	Multipliers domain.Multipliers               `json:"multipliers"`
	NetDebt     domain.Amount                    `json:"netDebt"`

	// History holds earlier fiscal periods; each complete one counts as a
	// reliable year alongside the current statement.
	History   []domain.FinancialStatement `json:"history,omitempty"`
	Scenarios *dcf.Scenarios              `json:"scenarios,omitempty"`
	DCF       *dcf.Overrides              `json:"dcf,omitempty"`
}

// Output is the valuation result.
type Output struct {
	ValuationRange      domain.ValuationRange               `json:"valuationRange"`
	MethodResults       []domain.ValuationMethodResult      `json:"methodResults"`
	ProbabilityWeighted domain.ProbabilityWeightedValuation `json:"probabilityWeighted"`

	Normalized normalize.Statement `json:"normalized"`
	Substance  domain.Substance    `json:"substance"`
	Confidence int                 `json:"confidence"`
	Variant    domain.Variant      `json:"variant"`
	Scenarios  dcf.ScenarioResults `json:"scenarios"`
}

// Engine carries the defaults used when a request omits DCF parameters or
// scenario assumptions.
type Engine struct {
	params    dcf.Params
	scenarios dcf.Scenarios
}

// New creates an Engine with the given defaults.
func New(params dcf.Params, scenarios dcf.Scenarios) *Engine {
	return &Engine{params: params, scenarios: scenarios}
}

// NewDefault creates an Engine with the built-in defaults.
func NewDefault() *Engine {
	return New(dcf.DefaultParams(), dcf.DefaultScenarios())
}

// Validate checks the input and returns a *ValidationError on malformed data.
func (e *Engine) Validate(in Input) error {
	problems := in.Statement.MissingRequired("statement.")

	if !in.NetDebt.Valid {
		problems = append(problems, domain.FieldProblem{Field: "netDebt", Message: "required"})
	}

	ranges := map[string]domain.MultiplierRange{
		"multipliers.revenue": in.Multipliers.Revenue,
		"multipliers.evEbit":  in.Multipliers.EVEBIT,
	}
	if in.Multipliers.EVEBITDA != nil {
		ranges["multipliers.evEbitda"] = *in.Multipliers.EVEBITDA
	}
	for _, field := range []string{"multipliers.revenue", "multipliers.evEbit", "multipliers.evEbitda"} {
		r, ok := ranges[field]
		if !ok {
			continue
		}
		if err := r.Validate(); err != nil {
			problems = append(problems, domain.FieldProblem{Field: field, Message: err.Error()})
		}
	}

	for i, adj := range in.Adjustments {
		prefix := fmt.Sprintf("adjustments[%d].", i)
		if !adj.NormalizedValue.Valid {
			problems = append(problems, domain.FieldProblem{Field: prefix + "normalized_value", Message: "required"})
		}
		if line, ok := normalize.LineItem(in.Statement, adj.Category); ok && !line.Valid && !adj.OriginalValue.Valid {
			problems = append(problems, domain.FieldProblem{Field: prefix + "original_value", Message: "required when the statement lacks the line item"})
		}
	}

	problems = append(problems, e.paramsFor(in).Validate()...)

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Run validates the input and computes the valuation.
func (e *Engine) Run(in Input) (Output, error) {
	if err := e.Validate(in); err != nil {
		return Output{}, err
	}

	params := e.paramsFor(in)
	scenarios := e.scenarios
	if in.Scenarios != nil {
		scenarios = *in.Scenarios
	}
	netDebt := in.NetDebt.Value

	normalized := normalize.Normalize(in.Statement, in.Adjustments)
	results := multiple.ValuateAll(normalized.FinancialStatement, in.Multipliers, netDebt)

	confidence := aggregate.Confidence(ReliableYears(in.Statement, in.History))
	variant := aggregate.SelectVariant(confidence)

	projections := dcf.Run(dcf.Base{
		Revenue: normalized.Revenue.Value,
		EBIT:    normalized.OperatingProfit.Value,
	}, scenarios, variant, params, netDebt)

	if variant == domain.VariantFull {
		results = append(results, projections.MethodResult(netDebt))
	}

	substance := aggregate.Substance(normalized.FinancialStatement)

	return Output{
		ValuationRange:      aggregate.Range(substance.Value, results),
		MethodResults:       results,
		ProbabilityWeighted: aggregate.Weighted(projections.Values()),
		Normalized:          normalized,
		Substance:           substance,
		Confidence:          confidence,
		Variant:             variant,
		Scenarios:           projections,
	}, nil
}

// paramsFor merges the request overrides over the engine defaults.
func (e *Engine) paramsFor(in Input) dcf.Params {
	if in.DCF == nil {
		return e.params
	}
	return in.DCF.Apply(e.params)
}

// ReliableYears counts the current statement plus every complete historical
// statement with a distinct fiscal year. History without a fiscal year cannot
// be told apart from the current period and is not counted.
func ReliableYears(current domain.FinancialStatement, history []domain.FinancialStatement) int {
	seen := map[int]bool{current.FiscalYear: true}
	years := 1
	for _, h := range history {
		if h.FiscalYear == 0 || seen[h.FiscalYear] {
			continue
		}
		if !h.Complete() || !h.Revenue.Positive() {
			continue
		}
		seen[h.FiscalYear] = true
		years++
	}
	return years
}

// Summary is a one-line human description of an output.
func Summary(out Output) string {
	return fmt.Sprintf("range %s–%s (base %s), weighted %s, variant %s",
		out.ValuationRange.Low, out.ValuationRange.High, out.ValuationRange.Base,
		out.ProbabilityWeighted.WeightedEquityValue.Round(0), out.Variant)
}

