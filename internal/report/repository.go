package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates that the requested report or share was not found.
	ErrNotFound = errors.New("report not found")
	// ErrShareExpired indicates that a share link is past its expiry.
	ErrShareExpired = errors.New("share link expired")
)

// Report is a stored valuation: the request and the engine output.
type Report struct {
	ID          uuid.UUID       `json:"id"`
	BusinessID  string          `json:"businessId"`
	CompanyName string          `json:"companyName"`
	Input       json.RawMessage `json:"input"`
	Output      json.RawMessage `json:"output"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Share is a time-limited public link to a report.
type Share struct {
	Token     uuid.UUID `json:"token"`
	ReportID  uuid.UUID `json:"reportId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository defines persistent storage for reports and share links.
type Repository interface {
	Save(ctx context.Context, r *Report) error
	Get(ctx context.Context, id uuid.UUID) (*Report, error)
	ListByBusinessID(ctx context.Context, businessID string, limit int) ([]Report, error)
	CreateShare(ctx context.Context, s *Share) error
	GetShare(ctx context.Context, token uuid.UUID) (*Share, error)
	DeleteExpiredShares(ctx context.Context, now time.Time) (int64, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL report repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Save inserts a report. Reports are never updated.
func (r *PgRepository) Save(ctx context.Context, rep *Report) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO reports (id, business_id, company_name, input, output)
		 VALUES ($1, $2, $3, $4::jsonb, $5::jsonb)
		 RETURNING created_at`,
		rep.ID, rep.BusinessID, rep.CompanyName, rep.Input, rep.Output).Scan(&rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*Report, error) {
	var rep Report
	err := r.pool.QueryRow(ctx,
		`SELECT id, business_id, company_name, input, output, created_at
		 FROM reports
		 WHERE id = $1`, id).Scan(&rep.ID, &rep.BusinessID, &rep.CompanyName, &rep.Input, &rep.Output, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting report %s: %w", id, err)
	}
	return &rep, nil
}

func (r *PgRepository) ListByBusinessID(ctx context.Context, businessID string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, business_id, company_name, input, output, created_at
		 FROM reports
		 WHERE business_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var rep Report
		if err := rows.Scan(&rep.ID, &rep.BusinessID, &rep.CompanyName, &rep.Input, &rep.Output, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}
	return reports, nil
}

func (r *PgRepository) CreateShare(ctx context.Context, s *Share) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO report_shares (token, report_id, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		s.Token, s.ReportID, s.ExpiresAt).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating share for report %s: %w", s.ReportID, err)
	}
	return nil
}

func (r *PgRepository) GetShare(ctx context.Context, token uuid.UUID) (*Share, error) {
	var s Share
	err := r.pool.QueryRow(ctx,
		`SELECT token, report_id, expires_at, created_at
		 FROM report_shares
		 WHERE token = $1`, token).Scan(&s.Token, &s.ReportID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting share: %w", err)
	}
	return &s, nil
}

func (r *PgRepository) DeleteExpiredShares(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM report_shares WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deleting expired shares: %w", err)
	}
	return tag.RowsAffected(), nil
}
