package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/codesense/internal/auth"
	"github.com/sakif/codesense/internal/service"
)

// HistoryHandler serves a signed-in user's execution history.
// Every route sits behind auth.RequireAuth.
type HistoryHandler struct {
	svc    *service.HistoryService
	logger *slog.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(svc *service.HistoryService, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{svc: svc, logger: logger}
}

// HandleList returns one page of history.
//
// HTTP: GET /api/history?page=1&limit=20&language=python
func (h *HistoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	q := r.URL.Query()

	page, err := h.svc.List(r.Context(), userID,
		queryInt(q.Get("page"), 1),
		queryInt(q.Get("limit"), 0),
		q.Get("language"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// HandleGet returns a single record.
//
// HTTP: GET /api/history/{id}
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	rec, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleDelete removes a single record.
//
// HTTP: DELETE /api/history/{id}
func (h *HistoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Execution deleted successfully"})
}

// HandleSummary returns totals, success rate and per-language counts.
//
// HTTP: GET /api/history/analytics/summary
func (h *HistoryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	sum, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// queryInt parses a query parameter, returning def when it is missing or
// not a number. Range checks are the service's job.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
