package questions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"

	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/llm"
)

const systemPrompt = `Olet yrityskauppoihin erikoistunut neuvonantaja. Laadit myyjälle lyhyitä
tarkentavia kysymyksiä omistajaan liittyvistä kuluista, jotta tilinpäätöksen liikevoitto voidaan
normalisoida. Vastaa vain JSON-muodossa: {"questions":[{"category":"owner_salary|premises_costs|other","prompt":"..."}]}.`

// LLMGenerator asks a language model to phrase the questions.
type LLMGenerator struct {
	gen llm.Generator
}

// NewLLMGenerator creates an LLMGenerator.
func NewLLMGenerator(gen llm.Generator) *LLMGenerator {
	return &LLMGenerator{gen: gen}
}

type llmQuestion struct {
	Category domain.AdjustmentCategory `json:"category"`
	Prompt   string                    `json:"prompt"`
}

// Generate implements Generator. Questions with unknown categories, for
// absent cost lines, or repeating a category are dropped.
func (g *LLMGenerator) Generate(ctx context.Context, s domain.FinancialStatement) ([]Question, error) {
	figures, err := json.Marshal(map[string]domain.Amount{
		"revenue":                  s.Revenue,
		"operating_profit":         s.OperatingProfit,
		"personnel_costs":          s.PersonnelCosts,
		"premises_costs":           s.PremisesCosts,
		"other_operating_expenses": s.OtherOperatingExpenses,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling figures: %w", err)
	}

	var resp struct {
		Questions []llmQuestion `json:"questions"`
	}
	prompt := "Tilinpäätöksen luvut (EUR):\n" + string(figures)
	if err := llm.GenerateJSON(ctx, g.gen, systemPrompt, prompt, &resp); err != nil {
		return nil, fmt.Errorf("generating questions: %w", err)
	}

	valid := lo.Filter(resp.Questions, func(q llmQuestion, _ int) bool {
		line, ok := lineFor(s, q.Category)
		return ok && line.Positive() && q.Prompt != ""
	})
	valid = lo.UniqBy(valid, func(q llmQuestion) domain.AdjustmentCategory { return q.Category })

	return lo.Map(valid, func(q llmQuestion, _ int) Question {
		line, _ := lineFor(s, q.Category)
		return Question{
			ID:       questionID(q.Category),
			Category: q.Category,
			Prompt:   q.Prompt,
			Current:  line.Value,
		}
	}), nil
}
