package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
)

// ExecutionDB stores the execution history.
type ExecutionDB struct {
	conn *sql.DB
}

var _ repository.ExecutionRepository = (*ExecutionDB)(nil)

const executionColumns = `id, user_id, language, code, input, output, success, status, duration_ms, created_at`

// Create appends a record to the history.
func (e *ExecutionDB) Create(ctx context.Context, rec *model.ExecutionRecord) error {
	rec.ID = xid.New().String()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := e.conn.ExecContext(ctx,
		`INSERT INTO executions (`+executionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.Language,
		rec.Code,
		rec.Input,
		rec.Output,
		rec.Success,
		rec.Status,
		rec.DurationMs,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating execution record: %w", err)
	}
	return nil
}

func (e *ExecutionDB) GetByID(ctx context.Context, id string) (*model.ExecutionRecord, error) {
	rec, err := scanExecution(e.conn.QueryRowContext(ctx,
		`SELECT `+executionColumns+` FROM executions WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("execution", id)
		}
		return nil, fmt.Errorf("sqlite: getting execution %s: %w", id, err)
	}
	return rec, nil
}

// List returns one page of the user's history, newest first, plus the
// total count for pagination.
func (e *ExecutionDB) List(ctx context.Context, userID string, filter repository.ExecutionFilter) ([]model.ExecutionRecord, int, error) {
	opts := filter.ListOptions.Normalize()

	// language = '' matches every row when no filter is given.
	const where = `WHERE user_id = ? AND (? = '' OR language = ?)`

	var total int
	err := e.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM executions `+where,
		userID, filter.Language, filter.Language,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting executions: %w", err)
	}

	rows, err := e.conn.QueryContext(ctx,
		`SELECT `+executionColumns+`
		 FROM executions `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, filter.Language, filter.Language, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing executions: %w", err)
	}
	defer rows.Close()

	records := make([]model.ExecutionRecord, 0, opts.Limit)
	for rows.Next() {
		rec, err := scanExecution(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning execution row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating executions: %w", err)
	}
	return records, total, nil
}

func (e *ExecutionDB) Delete(ctx context.Context, id string) error {
	result, err := e.conn.ExecContext(ctx, `DELETE FROM executions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting execution %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("execution", id)
	}
	return nil
}

// Summary aggregates the user's history: totals, success rate (percent,
// two decimals) and counts per language, most used first.
func (e *ExecutionDB) Summary(ctx context.Context, userID string) (*model.ExecutionSummary, error) {
	summary := &model.ExecutionSummary{ByLanguage: []model.LanguageCount{}}

	err := e.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM executions WHERE user_id = ?`,
		userID,
	).Scan(&summary.TotalExecutions, &summary.Successful)
	if err != nil {
		return nil, fmt.Errorf("sqlite: summarising executions: %w", err)
	}
	if summary.TotalExecutions > 0 {
		rate := float64(summary.Successful) / float64(summary.TotalExecutions) * 100
		summary.SuccessRate = math.Round(rate*100) / 100
	}

	rows, err := e.conn.QueryContext(ctx,
		`SELECT language, COUNT(*) AS n FROM executions
		 WHERE user_id = ?
		 GROUP BY language
		 ORDER BY n DESC, language`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting executions by language: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var lc model.LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning language count: %w", err)
		}
		summary.ByLanguage = append(summary.ByLanguage, lc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating language counts: %w", err)
	}
	return summary, nil
}

func scanExecution(row rowScanner) (*model.ExecutionRecord, error) {
	var rec model.ExecutionRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Language,
		&rec.Code,
		&rec.Input,
		&rec.Output,
		&rec.Success,
		&rec.Status,
		&rec.DurationMs,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
