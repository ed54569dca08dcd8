package api

import (
	"net/http"

	"github.com/valuatum/myyntikunto/internal/assessment"
	"github.com/valuatum/myyntikunto/internal/questions"
)

// BeginAssessment handles POST /api/v1/assessments.
func (h *Handler) BeginAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessment.BeginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.assessments.Begin(r.Context(), req)
	if err != nil {
		writeServiceError(w, "failed to begin assessment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetAssessment handles GET /api/v1/assessments/{id}.
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.assessments.Get(id)
	if err != nil {
		writeServiceError(w, "failed to get assessment", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type answerRequest struct {
	Answers []questions.Answer `json:"answers"`
}

// AnswerAssessment handles POST /api/v1/assessments/{id}/answers.
func (h *Handler) AnswerAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req answerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a, err := h.assessments.Answer(r.Context(), id, req.Answers)
	if err != nil {
		writeServiceError(w, "failed to answer assessment", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
