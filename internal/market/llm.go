package market

import (
	"context"
	"fmt"

	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/llm"
)

const systemPrompt = `You are an M&A analyst for Finnish small and medium-sized companies.
Given an industry code (TOL 2008), return realistic transaction multiple ranges as JSON:
{"revenue":{"min":0,"avg":0,"max":0,"justification":""},
 "evEbit":{"min":0,"avg":0,"max":0,"justification":""},
 "evEbitda":{"min":0,"avg":0,"max":0,"justification":""}}.
Use plain numbers and keep min <= avg <= max.`

// LLMSource asks a language model for multiple ranges.
type LLMSource struct {
	gen llm.Generator
}

// NewLLMSource creates an LLMSource.
func NewLLMSource(gen llm.Generator) *LLMSource {
	return &LLMSource{gen: gen}
}

// Multipliers implements Source. Ranges that are negative or out of order
// are rejected.
func (s *LLMSource) Multipliers(ctx context.Context, industry string) (domain.Multipliers, error) {
	var m domain.Multipliers
	prompt := "Industry code: " + industry
	if sec := Section(industry); sec != "" {
		prompt += " (section " + sec + ")"
	}
	if err := llm.GenerateJSON(ctx, s.gen, systemPrompt, prompt, &m); err != nil {
		return domain.Multipliers{}, fmt.Errorf("fetching multipliers for %q: %w", industry, err)
	}

	m.Revenue.Method, m.Revenue.Source = domain.MethodRevenue, "llm"
	m.EVEBIT.Method, m.EVEBIT.Source = domain.MethodEVEBIT, "llm"
	checks := []domain.MultiplierRange{m.Revenue, m.EVEBIT}
	if m.EVEBITDA != nil {
		m.EVEBITDA.Method, m.EVEBITDA.Source = domain.MethodEVEBITDA, "llm"
		checks = append(checks, *m.EVEBITDA)
	}
	for _, r := range checks {
		if err := r.Validate(); err != nil {
			return domain.Multipliers{}, fmt.Errorf("model returned invalid %s range: %w", r.Method, err)
		}
		if !r.Max.IsPositive() {
			return domain.Multipliers{}, fmt.Errorf("model returned empty %s range", r.Method)
		}
	}
	return m, nil
}
