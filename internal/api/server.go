package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// NewServer creates an HTTP server with all routes configured.
func NewServer(port string, h *Handler, adminAPIKey string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      Routes(h, adminAPIKey),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Routes registers every endpoint. Admin routes, which include every read of a
// stored report, require the bearer key when one is configured. Shared links
// are the public way to hand out a report.
func Routes(h *Handler, adminAPIKey string) http.Handler {
	admin := func(fn http.HandlerFunc) http.Handler {
		if adminAPIKey == "" {
			return fn
		}
		return requireAuth(adminAPIKey, fn)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/valuations", h.Valuate)
	mux.HandleFunc("GET /api/v1/multipliers", h.GetMultipliers)

	mux.Handle("POST /api/v1/reports", admin(h.CreateReport))
	mux.Handle("GET /api/v1/reports/{id}", admin(h.GetReport))
	mux.Handle("GET /api/v1/reports/{id}/export.xlsx", admin(h.ExportXLSX))
	mux.Handle("GET /api/v1/companies/{businessID}/reports", admin(h.ListCompanyReports))

	mux.Handle("POST /api/v1/reports/{id}/shares", admin(h.CreateShare))
	mux.HandleFunc("GET /api/v1/shared/{token}", h.GetShared)
	mux.HandleFunc("GET /shared/{token}", h.SharedPage)

	mux.HandleFunc("POST /api/v1/assessments", h.BeginAssessment)
	mux.HandleFunc("GET /api/v1/assessments/{id}", h.GetAssessment)
	mux.HandleFunc("POST /api/v1/assessments/{id}/answers", h.AnswerAssessment)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func requireAuth(apiKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if !strings.HasPrefix(auth, "Bearer ") || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
