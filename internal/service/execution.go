package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/executor"
	"github.com/sakif/codesense/internal/metrics"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
	"github.com/sakif/codesense/internal/suggest"
)

// MaxCodeLength bounds a submitted snippet (~100KB).
const MaxCodeLength = 100000

// historyWriteTimeout bounds the history insert that follows a run.
const historyWriteTimeout = 5 * time.Second

// errCodeAndLanguageRequired is the exact message clients match on.
const errCodeAndLanguageRequired = "Code and language are required"

// RunResult is an execution result plus the input suggestion for the code.
type RunResult struct {
	*executor.Result
	Suggestion suggest.Suggestion
}

// LanguageInfo describes one language the service accepts.
type LanguageInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Simulated bool   `json:"simulated"`
}

// ExecutionService runs code and records it in the caller's history.
//
//	validate → executor.Execute → suggest.Suggest → history (signed-in only)
type ExecutionService struct {
	exec    executor.Executor
	history repository.ExecutionRepository
	logger  *slog.Logger
}

// NewExecutionService creates an ExecutionService. history may be nil, in
// which case nothing is recorded.
func NewExecutionService(exec executor.Executor, history repository.ExecutionRepository, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{
		exec:    exec,
		history: history,
		logger:  logger,
	}
}

// Run validates req, executes it and returns the result with a suggestion.
// Only validation problems are returned as errors: a failed program is a
// successful call whose Result says Success=false.
//
// When userID is non-empty the run is saved to that user's history. A
// failed save is logged and never affects the result.
func (s *ExecutionService) Run(ctx context.Context, userID string, req executor.Request) (*RunResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	res := s.exec.Execute(ctx, req)
	metrics.ExecutionsTotal.WithLabelValues(res.Language, string(res.Status)).Inc()
	metrics.ExecutionDuration.WithLabelValues(res.Language).Observe(float64(res.DurationMs) / 1000)

	out := &RunResult{
		Result:     res,
		Suggestion: suggest.Suggest(req.Code, executor.ParseLanguage(req.Language)),
	}

	if userID != "" && s.history != nil {
		s.record(ctx, userID, req, res)
	}
	return out, nil
}

// Suggestions returns the heuristic input/output pair for code.
func (s *ExecutionService) Suggestions(code, language string) (suggest.Suggestion, executor.Language, error) {
	if code == "" || strings.TrimSpace(language) == "" {
		return suggest.Suggestion{}, "", apperror.ValidationFailed("code", errCodeAndLanguageRequired)
	}
	lang := executor.ParseLanguage(language)
	return suggest.Suggest(code, lang), lang, nil
}

// Languages lists the languages with a real toolchain followed by the ones
// that get a simulated response.
func (s *ExecutionService) Languages() []LanguageInfo {
	var infos []LanguageInfo
	for _, l := range s.exec.Languages() {
		infos = append(infos, LanguageInfo{ID: string(l), Name: l.DisplayName()})
	}
	for _, l := range executor.SimulatedLanguages() {
		infos = append(infos, LanguageInfo{ID: string(l), Name: l.DisplayName(), Simulated: true})
	}
	return infos
}

func (s *ExecutionService) record(ctx context.Context, userID string, req executor.Request, res *executor.Result) {
	// The run already happened; the client disconnecting must not lose it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	rec := &model.ExecutionRecord{
		UserID:     userID,
		Language:   res.Language,
		Code:       req.Code,
		Input:      req.Input,
		Output:     res.Output,
		Success:    res.Success,
		Status:     string(res.Status),
		DurationMs: res.DurationMs,
	}
	if err := s.history.Create(ctx, rec); err != nil {
		s.logger.Error("failed to save execution history",
			slog.String("userID", userID),
			slog.String("language", res.Language),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.Debug("execution recorded",
		slog.String("id", rec.ID),
		slog.String("userID", userID),
	)
}

func validateRequest(req executor.Request) error {
	if req.Code == "" || strings.TrimSpace(req.Language) == "" {
		return apperror.ValidationFailed("code", errCodeAndLanguageRequired)
	}
	if len(req.Code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	return nil
}
