package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/questions"
	"github.com/valuatum/myyntikunto/internal/report"
)

type mockReporter struct {
	calls int
	last  report.CreateRequest
	err   error
}

func (m *mockReporter) Create(_ context.Context, req report.CreateRequest) (*report.Report, engine.Output, error) {
	m.calls++
	m.last = req
	if m.err != nil {
		return nil, engine.Output{}, m.err
	}
	out, err := engine.NewDefault().Run(req.Input)
	if err != nil {
		return nil, engine.Output{}, err
	}
	return &report.Report{ID: uuid.New(), BusinessID: req.BusinessID}, out, nil
}

type stubGenerator struct {
	qs  []questions.Question
	err error
}

func (g stubGenerator) Generate(context.Context, domain.FinancialStatement) ([]questions.Question, error) {
	return g.qs, g.err
}

func beginRequest() BeginRequest {
	d := decimal.RequireFromString
	return BeginRequest{
		BusinessID:  "0112038-9",
		CompanyName: "Testi Oy",
		Input: engine.Input{
			Statement: domain.FinancialStatement{
				Revenue:              domain.AmountFromInt(1_000_000),
				OperatingProfit:      domain.AmountFromInt(20_000),
				PersonnelCosts:       domain.AmountFromInt(200_000),
				FixedAssets:          domain.AmountFromInt(0),
				CurrentAssets:        domain.AmountFromInt(0),
				ShortTermLiabilities: domain.AmountFromInt(0),
				LongTermLiabilities:  domain.AmountFromInt(0),
			},
			Multipliers: domain.Multipliers{
				Revenue: domain.MultiplierRange{Min: d("0.5"), Avg: d("0.8"), Max: d("1.2")},
				EVEBIT:  domain.MultiplierRange{Min: d("4"), Avg: d("5"), Max: d("6")},
			},
			NetDebt: domain.AmountFromInt(100_000),
		},
	}
}

func newService(gen questions.Generator, rep Reporter) *Service {
	return NewService(engine.NewDefault(), gen, rep, time.Hour)
}

func TestBeginAnswerComplete(t *testing.T) {
	rep := &mockReporter{}
	svc := newService(questions.RuleGenerator{}, rep)

	a, err := svc.Begin(context.Background(), beginRequest())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if a.State != StateAwaitingInput || len(a.Questions) != 1 {
		t.Fatalf("after Begin: state %s, %d questions", a.State, len(a.Questions))
	}

	done, err := svc.Answer(context.Background(), a.ID, []questions.Answer{
		{QuestionID: a.Questions[0].ID, Value: "150 000"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if done.State != StateComplete || done.ReportID == nil {
		t.Fatalf("after Answer: %+v", done)
	}
	if len(rep.last.Input.Adjustments) != 1 {
		t.Errorf("adjustments passed to report = %d, want 1", len(rep.last.Input.Adjustments))
	}
	ebit := done.Output.MethodResults[1]
	if !ebit.BaseValue.Value.Equal(decimal.NewFromInt(70_000)) {
		t.Errorf("normalized EBIT = %s, want 70000", ebit.BaseValue)
	}

	stored, err := svc.Get(a.ID)
	if err != nil || stored.State != StateComplete {
		t.Errorf("Get = %s, %v", stored.State, err)
	}

	if _, err := svc.Answer(context.Background(), a.ID, nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second answer err = %v, want ErrInvalidTransition", err)
	}
}

func TestBeginWithoutQuestionsCompletes(t *testing.T) {
	rep := &mockReporter{}
	a, err := newService(stubGenerator{}, rep).Begin(context.Background(), beginRequest())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if a.State != StateComplete || rep.calls != 1 {
		t.Errorf("state = %s, report calls = %d", a.State, rep.calls)
	}
}

func TestBeginGeneratorFailure(t *testing.T) {
	a, err := newService(stubGenerator{err: errors.New("model down")}, &mockReporter{}).Begin(context.Background(), beginRequest())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if a.State != StateFailed || a.Error == "" {
		t.Errorf("assessment = %+v, want failed with error", a)
	}
}

func TestBeginValidation(t *testing.T) {
	svc := newService(questions.RuleGenerator{}, &mockReporter{})

	req := beginRequest()
	req.BusinessID = "123"
	if _, err := svc.Begin(context.Background(), req); !engine.IsValidation(err) {
		t.Errorf("bad business ID: err = %v", err)
	}

	req = beginRequest()
	req.Input.NetDebt = domain.Unavailable()
	if _, err := svc.Begin(context.Background(), req); !engine.IsValidation(err) {
		t.Errorf("missing netDebt: err = %v", err)
	}
}

func TestAnswerInvalidValueKeepsWaiting(t *testing.T) {
	svc := newService(questions.RuleGenerator{}, &mockReporter{})
	a, _ := svc.Begin(context.Background(), beginRequest())

	_, err := svc.Answer(context.Background(), a.ID, []questions.Answer{{QuestionID: a.Questions[0].ID, Value: "paljon"}})
	if !engine.IsValidation(err) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	got, _ := svc.Get(a.ID)
	if got.State != StateAwaitingInput {
		t.Errorf("state = %s, want awaiting_input", got.State)
	}
}

func TestAnswerReportFailure(t *testing.T) {
	svc := newService(questions.RuleGenerator{}, &mockReporter{err: errors.New("db down")})
	a, _ := svc.Begin(context.Background(), beginRequest())

	got, err := svc.Answer(context.Background(), a.ID, []questions.Answer{{QuestionID: a.Questions[0].ID, Value: "150000"}})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got.State != StateFailed {
		t.Errorf("state = %s, want failed", got.State)
	}
}

func TestGetUnknown(t *testing.T) {
	if _, err := newService(questions.RuleGenerator{}, &mockReporter{}).Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
