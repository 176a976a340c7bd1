package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
)

// Note validation limits.
const (
	MaxNoteTitleLength   = 200
	MaxNoteContentLength = 100000
	MaxNoteTags          = 20
	MaxTagLength         = 50
	MaxFolderLength      = 100
)

// NoteInput carries the client-supplied fields of a note. A nil field is
// "not provided": Create applies the default, Update keeps the stored value.
type NoteInput struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	Color    *string   `json:"color"`
	IsPinned *bool     `json:"isPinned"`
	Folder   *string   `json:"folder"`
}

// NoteService handles business logic for notes. Every method is scoped to
// the calling user.
type NoteService struct {
	repo   repository.NoteRepository
	logger *slog.Logger
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo repository.NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates and saves a new note owned by userID.
func (s *NoteService) Create(ctx context.Context, userID string, in NoteInput) (*model.Note, error) {
	note := &model.Note{
		UserID: userID,
		Title:  model.DefaultNoteTitle,
		Color:  model.DefaultNoteColor,
		Tags:   []string{},
	}
	if err := applyNoteInput(note, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, note); err != nil {
		s.logger.Error("failed to create note",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("id", note.ID),
		slog.String("userID", userID),
	)
	return note, nil
}

// Get returns the note with id. Another user's note is reported as not
// found so its existence is not revealed.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*model.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}

	note, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		return nil, apperror.NotFound("note", id)
	}
	return note, nil
}

// List returns the user's notes, pinned first, filtered by folder, tag and
// a free-text search.
func (s *NoteService) List(ctx context.Context, userID string, filter repository.NoteFilter) ([]model.Note, error) {
	filter.ListOptions = filter.ListOptions.Normalize()
	filter.Folder = strings.TrimSpace(filter.Folder)
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.Search = strings.TrimSpace(filter.Search)

	notes, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		s.logger.Error("failed to list notes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	return notes, nil
}

// Update applies the provided fields to the note with id.
//
// STRATEGY: fetch, check ownership, apply, save. Editing someone else's
// note is forbidden rather than not found: the client already holds the ID.
func (s *NoteService) Update(ctx context.Context, userID, id string, in NoteInput) (*model.Note, error) {
	note, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyNoteInput(note, in); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, note); err != nil {
		s.logger.Error("failed to update note",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating note: %w", err)
	}

	s.logger.Info("note updated", slog.String("id", note.ID))
	return note, nil
}

// Delete removes the note with id.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("note deleted", slog.String("id", id))
	return nil
}

// Folders returns the distinct non-empty folder names the user has used.
func (s *NoteService) Folders(ctx context.Context, userID string) ([]string, error) {
	folders, err := s.repo.Folders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	return folders, nil
}

// Tags returns the distinct tags across the user's notes.
func (s *NoteService) Tags(ctx context.Context, userID string) ([]string, error) {
	tags, err := s.repo.Tags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *NoteService) owned(ctx context.Context, userID, id string) (*model.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}

	note, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note.UserID != userID {
		s.logger.Warn("note access denied",
			slog.String("id", id),
			slog.String("userID", userID),
		)
		return nil, apperror.Forbidden("you do not have access to this note")
	}
	return note, nil
}

// applyNoteInput validates in and copies the provided fields onto note.
// An empty title or color falls back to its default.
func applyNoteInput(note *model.Note, in NoteInput) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if len(title) > MaxNoteTitleLength {
			return apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxNoteTitleLength))
		}
		if title == "" {
			title = model.DefaultNoteTitle
		}
		note.Title = title
	}

	if in.Content != nil {
		if len(*in.Content) > MaxNoteContentLength {
			return apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or less", MaxNoteContentLength))
		}
		note.Content = *in.Content
	}

	if in.Tags != nil {
		tags, err := normalizeTags(*in.Tags)
		if err != nil {
			return err
		}
		note.Tags = tags
	}

	if in.Color != nil {
		color := strings.TrimSpace(*in.Color)
		if color == "" {
			color = model.DefaultNoteColor
		}
		note.Color = color
	}

	if in.IsPinned != nil {
		note.IsPinned = *in.IsPinned
	}

	if in.Folder != nil {
		folder := strings.TrimSpace(*in.Folder)
		if len(folder) > MaxFolderLength {
			return apperror.ValidationFailed("folder",
				fmt.Sprintf("folder must be %d characters or less", MaxFolderLength))
		}
		note.Folder = folder
	}

	return nil
}

var errTooManyTags = apperror.ValidationFailed("tags",
	fmt.Sprintf("a note can have at most %d tags", MaxNoteTags))

// normalizeTags trims, drops empties and removes duplicates, keeping the
// first occurrence's position.
func normalizeTags(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if len(t) > MaxTagLength {
			return nil, apperror.ValidationFailed("tags",
				fmt.Sprintf("tags must be %d characters or less", MaxTagLength))
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) > MaxNoteTags {
		return nil, errTooManyTags
	}
	return tags, nil
}

