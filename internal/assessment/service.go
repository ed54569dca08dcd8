package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/questions"
	"github.com/valuatum/myyntikunto/internal/report"
)

// Reporter runs and stores a valuation.
type Reporter interface {
	Create(ctx context.Context, req report.CreateRequest) (*report.Report, engine.Output, error)
}

// BeginRequest starts an assessment. Input.Adjustments is ignored; the
// adjustments come from the answers.
type BeginRequest struct {
	BusinessID  string       `json:"businessId"`
	CompanyName string       `json:"companyName"`
	Input       engine.Input `json:"input"`
}

// Service manages assessments in an expiring in-memory store.
type Service struct {
	engine    *engine.Engine
	generator questions.Generator
	reports   Reporter

	mu    sync.Mutex
	store *cache.Cache
}

// NewService creates an assessment Service. Assessments expire after ttl
// without updates.
func NewService(eng *engine.Engine, generator questions.Generator, reports Reporter, ttl time.Duration) *Service {
	return &Service{
		engine:    eng,
		generator: generator,
		reports:   reports,
		store:     cache.New(ttl, 2*ttl),
	}
}

// Begin validates the request, generates clarification questions and waits
// for answers. With nothing to ask it completes immediately.
func (s *Service) Begin(ctx context.Context, req BeginRequest) (Assessment, error) {
	businessID, err := domain.NormalizeBusinessID(req.BusinessID)
	if err != nil {
		return Assessment{}, &engine.ValidationError{Problems: []domain.FieldProblem{
			{Field: "businessId", Message: err.Error()},
		}}
	}
	in := req.Input
	in.Adjustments = nil
	if err := s.engine.Validate(in); err != nil {
		return Assessment{}, err
	}

	now := time.Now().UTC()
	a := Assessment{
		ID:          uuid.New(),
		BusinessID:  businessID,
		CompanyName: req.CompanyName,
		State:       StateInitial,
		Input:       in,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := a.StartProcessing(); err != nil {
		return Assessment{}, err
	}
	s.put(a)

	qs, err := s.generator.Generate(ctx, in.Statement)
	if err != nil {
		slog.Error("generating clarification questions failed", "assessment", a.ID, "error", err)
		_ = a.Fail(fmt.Errorf("generating questions: %w", err))
		s.put(a)
		return a, nil
	}
	if len(qs) == 0 {
		a = s.finish(ctx, a)
		return a, nil
	}

	if err := a.AwaitInput(qs); err != nil {
		return Assessment{}, err
	}
	s.put(a)
	return a, nil
}

// Get returns the current state of an assessment.
func (s *Service) Get(id uuid.UUID) (Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

// Answer applies the seller's answers, runs the valuation and stores the
// report. Invalid answers leave the assessment waiting for input.
func (s *Service) Answer(ctx context.Context, id uuid.UUID, answers []questions.Answer) (Assessment, error) {
	s.mu.Lock()
	a, err := s.get(id)
	if err != nil {
		s.mu.Unlock()
		return Assessment{}, err
	}
	if a.State != StateAwaitingInput {
		s.mu.Unlock()
		return a, fmt.Errorf("%w: cannot answer in state %s", ErrInvalidTransition, a.State)
	}
	adjustments, err := questions.ToAdjustments(a.Questions, answers)
	if err != nil {
		s.mu.Unlock()
		return a, &engine.ValidationError{Problems: []domain.FieldProblem{
			{Field: "answers", Message: err.Error()},
		}}
	}
	if err := a.StartProcessing(); err != nil {
		s.mu.Unlock()
		return a, err
	}
	a.Answers = answers
	a.Input.Adjustments = adjustments
	s.store.SetDefault(a.ID.String(), a)
	s.mu.Unlock()

	return s.finish(ctx, a), nil
}

// finish runs the report for a processing assessment and records the outcome.
func (s *Service) finish(ctx context.Context, a Assessment) Assessment {
	rep, out, err := s.reports.Create(ctx, report.CreateRequest{
		BusinessID:  a.BusinessID,
		CompanyName: a.CompanyName,
		Input:       a.Input,
	})
	if err != nil {
		slog.Error("assessment valuation failed", "assessment", a.ID, "error", err)
		_ = a.Fail(err)
	} else if err := a.Complete(rep.ID, out); err != nil {
		_ = a.Fail(err)
	}
	s.put(a)
	return a
}

func (s *Service) get(id uuid.UUID) (Assessment, error) {
	v, ok := s.store.Get(id.String())
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return v.(Assessment), nil
}

func (s *Service) put(a Assessment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.SetDefault(a.ID.String(), a)
}
