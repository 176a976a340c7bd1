package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
)

func createTestExecution(t *testing.T, db *DB, userID, lang string, success bool, at time.Time) *model.ExecutionRecord {
	t.Helper()
	rec := &model.ExecutionRecord{
		UserID:     userID,
		Language:   lang,
		Code:       "print(1)",
		Output:     "1",
		Success:    success,
		Status:     "success",
		DurationMs: 12,
		CreatedAt:  at,
	}
	if err := db.Executions().Create(context.Background(), rec); err != nil {
		t.Fatalf("failed to create execution record: %v", err)
	}
	return rec
}

func TestExecutionCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "exec@example.com")

	rec := createTestExecution(t, db, user.ID, "python", true, time.Time{})
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("Create() did not set ID/CreatedAt: %+v", rec)
	}

	found, err := db.Executions().GetByID(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Language != "python" || !found.Success || found.DurationMs != 12 || found.Output != "1" {
		t.Errorf("GetByID() = %+v, fields not persisted", found)
	}
}

func TestExecutionGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Executions().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestExecutionList_PaginatesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "page@example.com")
	other := createTestUser(t, db, "page-other@example.com")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		rec := createTestExecution(t, db, user.ID, "python", true, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, rec.ID)
	}
	createTestExecution(t, db, other.ID, "python", true, base)

	page, total, err := db.Executions().List(context.Background(), user.ID, repository.ExecutionFilter{
		ListOptions: repository.ListOptions{Limit: 2, Offset: 2},
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("len(page) = %d, want 2", len(page))
	}
	// newest first: ids[4], ids[3] | ids[2], ids[1] | ids[0]
	if page[0].ID != ids[2] || page[1].ID != ids[1] {
		t.Errorf("page = [%s %s], want [%s %s]", page[0].ID, page[1].ID, ids[2], ids[1])
	}
}

func TestExecutionList_LanguageFilter(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "lang@example.com")

	createTestExecution(t, db, user.ID, "python", true, time.Time{})
	createTestExecution(t, db, user.ID, "java", false, time.Time{})
	createTestExecution(t, db, user.ID, "python", false, time.Time{})

	records, total, err := db.Executions().List(context.Background(), user.ID, repository.ExecutionFilter{Language: "python"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(records) != 2 {
		t.Errorf("List(python) = %d records (total %d), want 2", len(records), total)
	}
	for _, r := range records {
		if r.Language != "python" {
			t.Errorf("List(python) returned a %s record", r.Language)
		}
	}
}

func TestExecutionDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "del@example.com")
	rec := createTestExecution(t, db, user.ID, "c", true, time.Time{})

	if err := db.Executions().Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := db.Executions().Delete(context.Background(), rec.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestExecutionSummary(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "summary@example.com")

	createTestExecution(t, db, user.ID, "python", true, time.Time{})
	createTestExecution(t, db, user.ID, "python", true, time.Time{})
	createTestExecution(t, db, user.ID, "java", false, time.Time{})

	summary, err := db.Executions().Summary(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if summary.TotalExecutions != 3 || summary.Successful != 2 {
		t.Errorf("totals = %d/%d, want 3/2", summary.TotalExecutions, summary.Successful)
	}
	if summary.SuccessRate != 66.67 {
		t.Errorf("SuccessRate = %v, want 66.67", summary.SuccessRate)
	}
	want := []model.LanguageCount{{Language: "python", Count: 2}, {Language: "java", Count: 1}}
	if len(summary.ByLanguage) != 2 || summary.ByLanguage[0] != want[0] || summary.ByLanguage[1] != want[1] {
		t.Errorf("ByLanguage = %v, want %v", summary.ByLanguage, want)
	}
}

func TestExecutionSummary_Empty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "empty@example.com")

	summary, err := db.Executions().Summary(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.TotalExecutions != 0 || summary.SuccessRate != 0 || len(summary.ByLanguage) != 0 {
		t.Errorf("Summary() = %+v, want zero values", summary)
	}
}
