// Package report stores valuation reports and their share links.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/engine"
)

// AfterSaveHook is called after each successfully stored report.
type AfterSaveHook interface {
	AfterSave(ctx context.Context, r *Report, out engine.Output) error
}

// CreateRequest is a valuation to run and store.
type CreateRequest struct {
	BusinessID  string       `json:"businessId"`
	CompanyName string       `json:"companyName"`
	Input       engine.Input `json:"input"`
}

// Service runs valuations and manages stored reports.
type Service struct {
	engine   *engine.Engine
	repo     Repository
	shareTTL time.Duration
	hook     AfterSaveHook // optional
	now      func() time.Time
}

// NewService creates a report Service. An optional AfterSaveHook can be
// provided, e.g. to append each report to a ledger spreadsheet.
func NewService(eng *engine.Engine, repo Repository, shareTTL time.Duration, hooks ...AfterSaveHook) *Service {
	var hook AfterSaveHook
	if len(hooks) > 0 {
		hook = hooks[0]
	}
	return &Service{engine: eng, repo: repo, shareTTL: shareTTL, hook: hook, now: time.Now}
}

// Create validates the business ID, runs the engine and stores the result.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Report, engine.Output, error) {
	businessID, err := domain.NormalizeBusinessID(req.BusinessID)
	if err != nil {
		return nil, engine.Output{}, &engine.ValidationError{Problems: []domain.FieldProblem{
			{Field: "businessId", Message: err.Error()},
		}}
	}

	out, err := s.engine.Run(req.Input)
	if err != nil {
		return nil, engine.Output{}, err
	}

	input, err := json.Marshal(req.Input)
	if err != nil {
		return nil, engine.Output{}, fmt.Errorf("marshaling input: %w", err)
	}
	output, err := json.Marshal(out)
	if err != nil {
		return nil, engine.Output{}, fmt.Errorf("marshaling output: %w", err)
	}

	rep := &Report{
		ID:          uuid.New(),
		BusinessID:  businessID,
		CompanyName: req.CompanyName,
		Input:       input,
		Output:      output,
	}
	if err := s.repo.Save(ctx, rep); err != nil {
		return nil, engine.Output{}, fmt.Errorf("saving report: %w", err)
	}
	slog.Info("report stored", "id", rep.ID, "business_id", businessID, "variant", out.Variant)

	if s.hook != nil {
		if err := s.hook.AfterSave(ctx, rep, out); err != nil {
			slog.Warn("report after-save hook failed", "id", rep.ID, "error", err)
		}
	}
	return rep, out, nil
}

// Get retrieves a report by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// ListByCompany retrieves the most recent reports for a business ID.
func (s *Service) ListByCompany(ctx context.Context, businessID string, limit int) ([]Report, error) {
	normalized, err := domain.NormalizeBusinessID(businessID)
	if err != nil {
		return nil, &engine.ValidationError{Problems: []domain.FieldProblem{
			{Field: "businessId", Message: err.Error()},
		}}
	}
	return s.repo.ListByBusinessID(ctx, normalized, limit)
}

// Share creates a share link for an existing report.
func (s *Service) Share(ctx context.Context, id uuid.UUID) (*Share, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	share := &Share{
		Token:     uuid.New(),
		ReportID:  id,
		ExpiresAt: s.now().Add(s.shareTTL).UTC(),
	}
	if err := s.repo.CreateShare(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}

// Shared resolves a share token to its report.
func (s *Service) Shared(ctx context.Context, token uuid.UUID) (*Report, error) {
	share, err := s.repo.GetShare(ctx, token)
	if err != nil {
		return nil, err
	}
	if !s.now().Before(share.ExpiresAt) {
		return nil, ErrShareExpired
	}
	return s.repo.Get(ctx, share.ReportID)
}

// PurgeExpiredShares deletes share links past their expiry.
func (s *Service) PurgeExpiredShares(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredShares(ctx, s.now())
}

// Decode unmarshals the stored input and output of a report.
func Decode(r *Report) (engine.Input, engine.Output, error) {
	var in engine.Input
	if err := json.Unmarshal(r.Input, &in); err != nil {
		return engine.Input{}, engine.Output{}, fmt.Errorf("decoding report %s input: %w", r.ID, err)
	}
	var out engine.Output
	if err := json.Unmarshal(r.Output, &out); err != nil {
		return engine.Input{}, engine.Output{}, fmt.Errorf("decoding report %s output: %w", r.ID, err)
	}
	return in, out, nil
}
