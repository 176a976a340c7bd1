package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/model"
)

func seedHistory(t *testing.T, repo *fakeExecutionRepo, userID, language string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		rec := &model.ExecutionRecord{
			UserID:   userID,
			Language: language,
			Code:     fmt.Sprintf("print(%d)", i),
			Success:  i%2 == 0,
		}
		require.NoError(t, repo.Create(context.Background(), rec))
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestHistoryService_List(t *testing.T) {
	repo := &fakeExecutionRepo{}
	seedHistory(t, repo, "user-1", "python", 5)
	seedHistory(t, repo, "user-1", "javascript", 2)
	seedHistory(t, repo, "user-2", "python", 3)
	svc := NewHistoryService(repo, discardLogger())

	t.Run("pagination", func(t *testing.T) {
		page, err := svc.List(context.Background(), "user-1", 2, 3, "")
		require.NoError(t, err)

		assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 7, ItemsPerPage: 3}, page.Pagination)
		assert.Len(t, page.Executions, 3)
	})

	t.Run("newest first", func(t *testing.T) {
		page, err := svc.List(context.Background(), "user-1", 1, 20, "")
		require.NoError(t, err)
		require.Len(t, page.Executions, 7)
		assert.Equal(t, "javascript", page.Executions[0].Language)
		for i := 1; i < len(page.Executions); i++ {
			assert.False(t, page.Executions[i].CreatedAt.After(page.Executions[i-1].CreatedAt))
		}
	})

	t.Run("language filter accepts aliases", func(t *testing.T) {
		page, err := svc.List(context.Background(), "user-1", 1, 20, "JS")
		require.NoError(t, err)
		assert.Equal(t, 2, page.Pagination.TotalItems)
		assert.Equal(t, 1, page.Pagination.TotalPages)
	})

	t.Run("defaults for bad paging values", func(t *testing.T) {
		page, err := svc.List(context.Background(), "user-1", 0, -1, "")
		require.NoError(t, err)
		assert.Equal(t, 1, page.Pagination.CurrentPage)
		assert.Equal(t, 20, page.Pagination.ItemsPerPage)
	})

	t.Run("empty history", func(t *testing.T) {
		page, err := svc.List(context.Background(), "nobody", 1, 20, "")
		require.NoError(t, err)
		assert.NotNil(t, page.Executions)
		assert.Empty(t, page.Executions)
		assert.Equal(t, 0, page.Pagination.TotalPages)
	})
}

func TestHistoryService_GetAndDelete(t *testing.T) {
	repo := &fakeExecutionRepo{}
	mine := seedHistory(t, repo, "user-1", "python", 1)[0]
	theirs := seedHistory(t, repo, "user-2", "python", 1)[0]
	svc := NewHistoryService(repo, discardLogger())

	rec, err := svc.Get(context.Background(), "user-1", mine)
	require.NoError(t, err)
	assert.Equal(t, mine, rec.ID)

	_, err = svc.Get(context.Background(), "user-1", theirs)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "another user's record must look missing")

	err = svc.Delete(context.Background(), "user-1", theirs)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = repo.GetByID(context.Background(), theirs)
	assert.NoError(t, err, "another user's record must survive")

	require.NoError(t, svc.Delete(context.Background(), "user-1", mine))
	_, err = svc.Get(context.Background(), "user-1", mine)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Get(context.Background(), "user-1", " ")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestHistoryService_Summary(t *testing.T) {
	repo := &fakeExecutionRepo{}
	seedHistory(t, repo, "user-1", "python", 4)
	svc := NewHistoryService(repo, discardLogger())

	sum, err := svc.Summary(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 4, sum.TotalExecutions)
	assert.Equal(t, 2, sum.Successful)
}

func TestCodePreview(t *testing.T) {
	assert.Equal(t, "short", codePreview("short"))

	exact := strings.Repeat("x", CodePreviewLength)
	assert.Equal(t, exact, codePreview(exact))

	long := strings.Repeat("é", CodePreviewLength+1)
	got := codePreview(long)
	assert.Equal(t, strings.Repeat("é", CodePreviewLength)+"...", got)
}
