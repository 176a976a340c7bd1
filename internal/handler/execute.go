package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/auth"
	"github.com/sakif/codesense/internal/executor"
	"github.com/sakif/codesense/internal/service"
	"github.com/sakif/codesense/internal/suggest"
)

// isoMillis matches JavaScript's Date.prototype.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// RunResponse is the body of POST /api/execute/run.
type RunResponse struct {
	Success       bool               `json:"success"`
	Output        string             `json:"output"`
	Language      string             `json:"language"`
	Suggestions   suggest.Suggestion `json:"suggestions"`
	ExecutionTime int64              `json:"executionTime"`
	Timestamp     string             `json:"timestamp"`
	Status        executor.Status    `json:"status"`
	DurationMs    int64              `json:"durationMs"`
}

// SuggestionsResponse is the body of POST /api/execute/suggestions.
type SuggestionsResponse struct {
	Suggestions suggest.Suggestion `json:"suggestions"`
	Language    string             `json:"language"`
	Timestamp   string             `json:"timestamp"`
}

// executeError is the fixed error shape of the execute endpoints.
type executeError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ExecuteHandler serves the code execution endpoints.
//
//	POST /api/execute/run          → run code, return output + suggestion
//	POST /api/execute/suggestions  → suggestion only, nothing runs
//	GET  /api/execute/languages    → what can run for real
type ExecuteHandler struct {
	svc    *service.ExecutionService
	logger *slog.Logger
	now    func() time.Time
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(svc *service.ExecutionService, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		svc:    svc,
		logger: logger,
		now:    time.Now,
	}
}

// HandleRun executes the submitted code.
//
// HTTP: POST /api/execute/run
// Auth: Optional (signed-in runs are saved to history)
// REQUEST BODY: {"code": "print(1)", "language": "python", "input": ""}
//
// A program that fails to compile or crashes is still a 200: the failure is
// reported in "success" and "output". Only a request that cannot be served
// gets a 4xx/5xx.
func (h *ExecuteHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req executor.Request
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, executeError{
			Error:   "Code execution failed",
			Details: err.Error(),
		})
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	res, err := h.svc.Run(r.Context(), userID, req)
	if err != nil {
		h.writeExecuteError(w, "Code execution failed", err)
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Success:       res.Success,
		Output:        res.Output,
		Language:      res.Language,
		Suggestions:   res.Suggestion,
		ExecutionTime: res.ExecutionTime,
		Timestamp:     h.timestamp(),
		Status:        res.Status,
		DurationMs:    res.DurationMs,
	})
}

// HandleSuggestions returns the heuristic input/output for the code.
//
// HTTP: POST /api/execute/suggestions
// REQUEST BODY: {"code": "...", "language": "python"}
func (h *ExecuteHandler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req executor.Request
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusInternalServerError, executeError{
			Error:   "Failed to generate suggestions",
			Details: err.Error(),
		})
		return
	}

	sugg, lang, err := h.svc.Suggestions(req.Code, req.Language)
	if err != nil {
		h.writeExecuteError(w, "Failed to generate suggestions", err)
		return
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Suggestions: sugg,
		Language:    string(lang),
		Timestamp:   h.timestamp(),
	})
}

// HandleLanguages lists runnable and simulated languages.
//
// HTTP: GET /api/execute/languages
func (h *ExecuteHandler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"languages": h.svc.Languages()})
}

// writeExecuteError keeps the execute endpoints' {error, details} shape:
// validation problems are a 400 carrying the validation message, anything
// else a 500 under the given summary.
func (h *ExecuteHandler) writeExecuteError(w http.ResponseWriter, summary string, err error) {
	var appErr *apperror.AppError
	if errors.Is(err, apperror.ErrValidation) && errors.As(err, &appErr) {
		writeJSON(w, http.StatusBadRequest, executeError{Error: appErr.Message})
		return
	}

	h.logger.Error("execute request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, executeError{
		Error:   summary,
		Details: err.Error(),
	})
}

func (h *ExecuteHandler) timestamp() string {
	return h.now().UTC().Format(isoMillis)
}
