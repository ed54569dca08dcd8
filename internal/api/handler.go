package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/valuatum/myyntikunto/internal/assessment"
	"github.com/valuatum/myyntikunto/internal/domain"
	"github.com/valuatum/myyntikunto/internal/engine"
	"github.com/valuatum/myyntikunto/internal/export"
	"github.com/valuatum/myyntikunto/internal/market"
	"github.com/valuatum/myyntikunto/internal/report"
)

const maxBodyBytes = 1 << 20

// Handler provides HTTP endpoints for the valuation API.
type Handler struct {
	engine      *engine.Engine
	reports     *report.Service
	assessments *assessment.Service
	multipliers market.Source
	listLimit   int
}

// NewHandler creates a new API handler.
func NewHandler(eng *engine.Engine, reports *report.Service, assessments *assessment.Service, multipliers market.Source, listLimit int) *Handler {
	if listLimit <= 0 {
		listLimit = 30
	}
	return &Handler{
		engine:      eng,
		reports:     reports,
		assessments: assessments,
		multipliers: multipliers,
		listLimit:   listLimit,
	}
}

// Valuate handles POST /api/v1/valuations.
func (h *Handler) Valuate(w http.ResponseWriter, r *http.Request) {
	var in engine.Input
	if !decodeBody(w, r, &in) {
		return
	}
	out, err := h.engine.Run(in)
	if err != nil {
		writeServiceError(w, "valuation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GetMultipliers handles GET /api/v1/multipliers?industry=.
func (h *Handler) GetMultipliers(w http.ResponseWriter, r *http.Request) {
	industry := r.URL.Query().Get("industry")
	if industry == "" {
		writeError(w, http.StatusBadRequest, "industry query parameter is required")
		return
	}
	m, err := h.multipliers.Multipliers(r.Context(), industry)
	if err != nil {
		slog.Error("failed to look up multipliers", "industry", industry, "error", err)
		writeError(w, http.StatusBadGateway, "multiplier lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type createReportResponse struct {
	Report *report.Report `json:"report"`
	Output engine.Output  `json:"output"`
}

// CreateReport handles POST /api/v1/reports.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req report.CreateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rep, out, err := h.reports.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, "failed to create report", err)
		return
	}
	writeJSON(w, http.StatusCreated, createReportResponse{Report: rep, Output: out})
}

// GetReport handles GET /api/v1/reports/{id}.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	rep, err := h.reports.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "failed to get report", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// ListCompanyReports handles GET /api/v1/companies/{businessID}/reports.
func (h *Handler) ListCompanyReports(w http.ResponseWriter, r *http.Request) {
	limit := h.listLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, 365)
		}
	}
	reports, err := h.reports.ListByCompany(r.Context(), r.PathValue("businessID"), limit)
	if err != nil {
		writeServiceError(w, "failed to list reports", err)
		return
	}
	if reports == nil {
		reports = []report.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// ExportXLSX handles GET /api/v1/reports/{id}/export.xlsx.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	rep, err := h.reports.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "failed to get report", err)
		return
	}
	view, err := export.NewView(rep)
	if err != nil {
		writeServiceError(w, "failed to decode report", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, view); err != nil {
		writeServiceError(w, "failed to export report", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="arvonmaaritys-%s.xlsx"`, rep.BusinessID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Warn("failed to write xlsx response", "error", err)
	}
}

// CreateShare handles POST /api/v1/reports/{id}/shares.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	share, err := h.reports.Share(r.Context(), id)
	if err != nil {
		writeServiceError(w, "failed to create share", err)
		return
	}
	writeJSON(w, http.StatusCreated, share)
}

// GetShared handles GET /api/v1/shared/{token}.
func (h *Handler) GetShared(w http.ResponseWriter, r *http.Request) {
	token, ok := pathUUID(w, r, "token")
	if !ok {
		return
	}
	rep, err := h.reports.Shared(r.Context(), token)
	if err != nil {
		writeServiceError(w, "failed to resolve share", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// SharedPage handles GET /shared/{token} with an HTML rendering.
func (h *Handler) SharedPage(w http.ResponseWriter, r *http.Request) {
	token, err := uuid.Parse(r.PathValue("token"))
	if err != nil {
		http.Error(w, "Linkkiä ei löydy", http.StatusNotFound)
		return
	}
	rep, err := h.reports.Shared(r.Context(), token)
	switch {
	case errors.Is(err, report.ErrShareExpired):
		http.Error(w, "Linkki on vanhentunut", http.StatusGone)
		return
	case errors.Is(err, report.ErrNotFound):
		http.Error(w, "Linkkiä ei löydy", http.StatusNotFound)
		return
	case err != nil:
		slog.Error("failed to resolve share", "error", err)
		http.Error(w, "Sisäinen virhe", http.StatusInternalServerError)
		return
	}

	view, err := export.NewView(rep)
	if err != nil {
		slog.Error("failed to decode shared report", "id", rep.ID, "error", err)
		http.Error(w, "Sisäinen virhe", http.StatusInternalServerError)
		return
	}
	page, err := export.HTMLPage(view)
	if err != nil {
		slog.Error("failed to render shared report", "id", rep.ID, "error", err)
		http.Error(w, "Sisäinen virhe", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		slog.Warn("failed to write HTML response", "error", err)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

type validationResponse struct {
	Error    string                `json:"error"`
	Problems []domain.FieldProblem `json:"problems"`
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, validationResponse{Error: "invalid input", Problems: ve.Problems})
	case errors.Is(err, report.ErrNotFound), errors.Is(err, assessment.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, report.ErrShareExpired):
		writeError(w, http.StatusGone, "share link expired")
	case errors.Is(err, assessment.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
