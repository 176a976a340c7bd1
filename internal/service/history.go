package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/executor"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
)

// CodePreviewLength is how many characters of code a history listing shows.
const CodePreviewLength = 100

// HistoryEntry is a record as it appears in a listing.
type HistoryEntry struct {
	model.ExecutionRecord
	CodePreview string `json:"codePreview"`
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// HistoryPage is one page of a user's execution history.
type HistoryPage struct {
	Executions []HistoryEntry `json:"executions"`
	Pagination Pagination     `json:"pagination"`
}

// HistoryService reads and prunes a user's execution history. Records
// belonging to other users are invisible: they are reported as not found.
type HistoryService struct {
	repo   repository.ExecutionRepository
	logger *slog.Logger
}

// NewHistoryService creates a new HistoryService.
func NewHistoryService(repo repository.ExecutionRepository, logger *slog.Logger) *HistoryService {
	return &HistoryService{
		repo:   repo,
		logger: logger,
	}
}

// List returns page (1-based) of the user's history, newest first,
// optionally narrowed to one language.
//
// Example: page 3 with limit 20 → offset 40.
func (s *HistoryService) List(ctx context.Context, userID string, page, limit int, language string) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	opts := repository.ListOptions{Limit: limit}.Normalize()
	opts.Offset = (page - 1) * opts.Limit

	filter := repository.ExecutionFilter{ListOptions: opts}
	if language = strings.TrimSpace(language); language != "" {
		filter.Language = string(executor.ParseLanguage(language))
	}

	records, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list history", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, HistoryEntry{ExecutionRecord: r, CodePreview: codePreview(r.Code)})
	}

	return &HistoryPage{
		Executions: entries,
		Pagination: Pagination{
			CurrentPage:  page,
			TotalPages:   (total + opts.Limit - 1) / opts.Limit,
			TotalItems:   total,
			ItemsPerPage: opts.Limit,
		},
	}, nil
}

// Get returns one of the user's records.
func (s *HistoryService) Get(ctx context.Context, userID, id string) (*model.ExecutionRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "execution ID is required")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, apperror.NotFound("execution", id)
	}
	return rec, nil
}

// Delete removes one of the user's records.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("execution deleted",
		slog.String("id", id),
		slog.String("userID", userID),
	)
	return nil
}

// Summary aggregates the user's history for the analytics view.
func (s *HistoryService) Summary(ctx context.Context, userID string) (*model.ExecutionSummary, error) {
	sum, err := s.repo.Summary(ctx, userID)
	if err != nil {
		s.logger.Error("failed to summarize history", slog.String("error", err.Error()))
		return nil, fmt.Errorf("summarizing history: %w", err)
	}
	return sum, nil
}

// codePreview cuts code to CodePreviewLength runes, marking the cut with
// "...".
func codePreview(code string) string {
	if utf8.RuneCountInString(code) <= CodePreviewLength {
		return code
	}
	runes := []rune(code)
	return string(runes[:CodePreviewLength]) + "..."
}
