package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/executor"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
)

// fakeExecutor returns a canned result and remembers the request.
type fakeExecutor struct {
	got    executor.Request
	calls  int
	result executor.Result
}

func (f *fakeExecutor) Execute(ctx context.Context, req executor.Request) *executor.Result {
	f.got = req
	f.calls++
	res := f.result
	if res.Language == "" {
		res.Language = string(executor.ParseLanguage(req.Language))
	}
	return &res
}

func (f *fakeExecutor) Languages() []executor.Language {
	return []executor.Language{executor.C, executor.Python}
}

// fakeExecutionRepo is an in-memory repository.ExecutionRepository.
type fakeExecutionRepo struct {
	mu        sync.Mutex
	records   []model.ExecutionRecord
	nextID    int
	createErr error
}

func (f *fakeExecutionRepo) Create(ctx context.Context, rec *model.ExecutionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.nextID++
	rec.ID = fmt.Sprintf("exec-%d", f.nextID)
	// Spread records one second apart so ordering is unambiguous.
	rec.CreatedAt = time.Date(2026, 1, 1, 0, 0, f.nextID, 0, time.UTC)
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeExecutionRepo) GetByID(ctx context.Context, id string) (*model.ExecutionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, apperror.NotFound("execution", id)
}

func (f *fakeExecutionRepo) List(ctx context.Context, userID string, filter repository.ExecutionFilter) ([]model.ExecutionRecord, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.ExecutionRecord
	for _, r := range f.records {
		if r.UserID == userID && (filter.Language == "" || r.Language == filter.Language) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if filter.Offset >= total {
		return []model.ExecutionRecord{}, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeExecutionRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("execution", id)
}

func (f *fakeExecutionRepo) Summary(ctx context.Context, userID string) (*model.ExecutionSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := &model.ExecutionSummary{ByLanguage: []model.LanguageCount{}}
	for _, r := range f.records {
		if r.UserID != userID {
			continue
		}
		sum.TotalExecutions++
		if r.Success {
			sum.Successful++
		}
	}
	return sum, nil
}

func TestExecutionService_Run(t *testing.T) {
	t.Run("anonymous run is not recorded", func(t *testing.T) {
		exec := &fakeExecutor{result: executor.Result{Success: true, Output: "120", Status: executor.StatusSuccess}}
		history := &fakeExecutionRepo{}
		svc := NewExecutionService(exec, history, discardLogger())

		res, err := svc.Run(context.Background(), "", executor.Request{
			Code:     "def factorial(n): ...",
			Language: "py",
			Input:    "5",
		})

		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "120", res.Output)
		assert.Equal(t, "python", res.Language)
		assert.Equal(t, "5", res.Suggestion.Input)
		assert.Equal(t, "120", res.Suggestion.Output)
		assert.Equal(t, "5", exec.got.Input)
		assert.Empty(t, history.records)
	})

	t.Run("signed-in run is recorded", func(t *testing.T) {
		exec := &fakeExecutor{result: executor.Result{
			Output:     "Error: Python runtime error: boom",
			Status:     executor.StatusRuntimeError,
			DurationMs: 12,
		}}
		history := &fakeExecutionRepo{}
		svc := NewExecutionService(exec, history, discardLogger())

		_, err := svc.Run(context.Background(), "user-1", executor.Request{Code: "raise", Language: "python"})
		require.NoError(t, err)

		require.Len(t, history.records, 1)
		rec := history.records[0]
		assert.Equal(t, "user-1", rec.UserID)
		assert.Equal(t, "python", rec.Language)
		assert.Equal(t, "raise", rec.Code)
		assert.False(t, rec.Success)
		assert.Equal(t, "runtime_error", rec.Status)
		assert.Equal(t, int64(12), rec.DurationMs)
	})

	t.Run("history failure does not fail the run", func(t *testing.T) {
		exec := &fakeExecutor{result: executor.Result{Success: true, Output: "ok", Status: executor.StatusSuccess}}
		history := &fakeExecutionRepo{createErr: errors.New("disk full")}
		svc := NewExecutionService(exec, history, discardLogger())

		res, err := svc.Run(context.Background(), "user-1", executor.Request{Code: "x", Language: "python"})

		require.NoError(t, err)
		assert.True(t, res.Success)
	})

	t.Run("cancelled request is still recorded", func(t *testing.T) {
		exec := &fakeExecutor{result: executor.Result{Status: executor.StatusTimeout}}
		history := &fakeExecutionRepo{}
		svc := NewExecutionService(exec, history, discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.Run(ctx, "user-1", executor.Request{Code: "x", Language: "python"})

		require.NoError(t, err)
		assert.Len(t, history.records, 1)
	})

	t.Run("nil history store", func(t *testing.T) {
		svc := NewExecutionService(&fakeExecutor{}, nil, discardLogger())
		_, err := svc.Run(context.Background(), "user-1", executor.Request{Code: "x", Language: "python"})
		assert.NoError(t, err)
	})
}

func TestExecutionService_RunValidation(t *testing.T) {
	tests := []struct {
		name string
		req  executor.Request
		want string
	}{
		{"missing code", executor.Request{Language: "python"}, "Code and language are required"},
		{"missing language", executor.Request{Code: "print(1)"}, "Code and language are required"},
		{"blank language", executor.Request{Code: "print(1)", Language: "  "}, "Code and language are required"},
		{"code too long", executor.Request{Code: strings.Repeat("a", MaxCodeLength+1), Language: "python"}, "code must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			svc := NewExecutionService(exec, nil, discardLogger())

			_, err := svc.Run(context.Background(), "", tt.req)

			require.ErrorIs(t, err, apperror.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, exec.calls, "executor must not run on invalid input")
		})
	}
}

func TestExecutionService_Suggestions(t *testing.T) {
	svc := NewExecutionService(&fakeExecutor{}, nil, discardLogger())

	sugg, lang, err := svc.Suggestions("function fibonacci(n) {}", "JS")
	require.NoError(t, err)
	assert.Equal(t, executor.JavaScript, lang)
	assert.Equal(t, "6", sugg.Input)
	assert.Equal(t, "8", sugg.Output)

	_, _, err = svc.Suggestions("", "python")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestExecutionService_Languages(t *testing.T) {
	svc := NewExecutionService(&fakeExecutor{}, nil, discardLogger())

	infos := svc.Languages()

	require.NotEmpty(t, infos)
	assert.Equal(t, LanguageInfo{ID: "c", Name: "C"}, infos[0])
	assert.Equal(t, LanguageInfo{ID: "python", Name: "Python"}, infos[1])
	for _, info := range infos[2:] {
		assert.True(t, info.Simulated, info.ID)
	}
	assert.Len(t, infos, 2+len(executor.SimulatedLanguages()))
}
