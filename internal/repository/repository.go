// Package repository declares the storage interfaces the services depend on.
// The sqlite subpackage implements them; tests use in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/codesense/internal/model"
)

// Page size bounds shared by every List method.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type ListOptions struct {
	Limit  int
	Offset int
}

// Normalize clamps Limit to [1, MaxLimit] (DefaultLimit when unset) and
// Offset to >= 0.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// NoteFilter narrows a note listing. Empty fields match everything.
type NoteFilter struct {
	ListOptions
	Folder string
	Tag    string
	Search string // matched against title and content
}

// ExecutionFilter narrows a history listing.
type ExecutionFilter struct {
	ListOptions
	Language string
}

type UserRepository interface {
	// Create inserts a password account. A second account with the same
	// email returns apperror.ErrConflict.
	Create(ctx context.Context, user *model.User) error
	// UpsertGitHub inserts or refreshes the account for user.GitHubID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail finds the password account registered with email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, id string) (*model.Note, error)
	List(ctx context.Context, userID string, filter NoteFilter) ([]model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id string) error
	Folders(ctx context.Context, userID string) ([]string, error)
	Tags(ctx context.Context, userID string) ([]string, error)
}

type ExecutionRepository interface {
	Create(ctx context.Context, rec *model.ExecutionRecord) error
	GetByID(ctx context.Context, id string) (*model.ExecutionRecord, error)
	// List returns one page of the user's history, newest first, and the
	// total number of records matching filter.
	List(ctx context.Context, userID string, filter ExecutionFilter) ([]model.ExecutionRecord, int, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, userID string) (*model.ExecutionSummary, error)
}
