// Package questions produces the clarification questions asked of a seller
// about owner-related costs, and turns the answers into normalization
// adjustments.
package questions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
)

// ErrInvalidAnswer is returned when an answer cannot be read as an amount.
var ErrInvalidAnswer = errors.New("invalid answer")

// Question asks what a cost line would be under a new owner.
type Question struct {
	ID       string                    `json:"id"`
	Category domain.AdjustmentCategory `json:"category"`
	Prompt   string                    `json:"prompt"`
	Current  decimal.Decimal           `json:"current"` // value in the statement
}

// Answer is the seller's reply to one question.
type Answer struct {
	QuestionID  string `json:"question_id"`
	Value       string `json:"value"` // Finnish number, e.g. "150 000"
	Explanation string `json:"explanation,omitempty"`
}

// Generator produces clarification questions for a statement.
type Generator interface {
	Generate(ctx context.Context, s domain.FinancialStatement) ([]Question, error)
}

// adjustable lists the categories in the order they are asked.
var adjustable = []struct {
	category domain.AdjustmentCategory
	line     func(domain.FinancialStatement) domain.Amount
	prompt   string
}{
	{
		domain.CategoryOwnerSalary,
		func(s domain.FinancialStatement) domain.Amount { return s.PersonnelCosts },
		"Henkilöstökulut ovat %s €. Mikä olisi omistajan työpanoksen markkinaehtoinen palkka sivukuluineen, jos tehtävään palkattaisiin ulkopuolinen henkilö?",
	},
	{
		domain.CategoryPremisesCosts,
		func(s domain.FinancialStatement) domain.Amount { return s.PremisesCosts },
		"Toimitilakulut ovat %s €. Vuokrataanko tiloja omistajalta tai lähipiiriltä? Mikä olisi markkinaehtoinen vuokra?",
	},
	{
		domain.CategoryOther,
		func(s domain.FinancialStatement) domain.Amount { return s.OtherOperatingExpenses },
		"Liiketoiminnan muut kulut ovat %s €. Sisältyykö niihin omistajan henkilökohtaisia tai kertaluonteisia kuluja? Mikä olisi kulujen taso uuden omistajan aikana?",
	},
}

func lineFor(s domain.FinancialStatement, c domain.AdjustmentCategory) (domain.Amount, bool) {
	for _, a := range adjustable {
		if a.category == c {
			return a.line(s), true
		}
	}
	return domain.Amount{}, false
}

func questionID(c domain.AdjustmentCategory) string {
	return "q_" + string(c)
}

// RuleGenerator asks one fixed question per present cost line.
type RuleGenerator struct{}

// Generate implements Generator. It never fails.
func (RuleGenerator) Generate(_ context.Context, s domain.FinancialStatement) ([]Question, error) {
	var qs []Question
	for _, a := range adjustable {
		line := a.line(s)
		if !line.Positive() {
			continue
		}
		qs = append(qs, Question{
			ID:       questionID(a.category),
			Category: a.category,
			Prompt:   fmt.Sprintf(a.prompt, domain.FormatEUR(line.Value)),
			Current:  line.Value,
		})
	}
	return qs, nil
}

// Fallback tries primary and falls back to secondary on error or when
// primary returns nothing.
type Fallback struct {
	Primary, Secondary Generator
}

// Generate implements Generator.
func (f Fallback) Generate(ctx context.Context, s domain.FinancialStatement) ([]Question, error) {
	qs, err := f.Primary.Generate(ctx, s)
	if err == nil && len(qs) > 0 {
		return qs, nil
	}
	if err != nil {
		slog.Warn("question generation failed, using fallback", "error", err)
	}
	return f.Secondary.Generate(ctx, s)
}

// ToAdjustment converts an answer into a normalization adjustment.
func ToAdjustment(q Question, a Answer) (domain.NormalizationAdjustment, error) {
	v, err := domain.ParseEuroAmount(a.Value)
	if err != nil {
		return domain.NormalizationAdjustment{}, fmt.Errorf("%w for %s: %v", ErrInvalidAnswer, q.ID, err)
	}
	if v.IsNegative() {
		return domain.NormalizationAdjustment{}, fmt.Errorf("%w for %s: negative amount %s", ErrInvalidAnswer, q.ID, v)
	}
	explanation := strings.TrimSpace(a.Explanation)
	if explanation == "" {
		explanation = q.Prompt
	}
	return domain.NormalizationAdjustment{
		Category:        q.Category,
		OriginalValue:   domain.NewAmount(q.Current),
		NormalizedValue: domain.NewAmount(v),
		Explanation:     explanation,
	}, nil
}

// ToAdjustments converts every answered question. Answers that match no
// question are skipped; unanswered questions produce no adjustment.
func ToAdjustments(qs []Question, answers []Answer) ([]domain.NormalizationAdjustment, error) {
	byID := lo.KeyBy(qs, func(q Question) string { return q.ID })
	adjustments := make([]domain.NormalizationAdjustment, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			slog.Warn("answer for unknown question skipped", "question_id", a.QuestionID)
			continue
		}
		adj, err := ToAdjustment(q, a)
		if err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, nil
}
