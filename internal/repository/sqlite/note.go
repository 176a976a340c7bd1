package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/model"
	"github.com/sakif/codesense/internal/repository"
)

// NoteDB stores notes.
type NoteDB struct {
	conn *sql.DB
}

var _ repository.NoteRepository = (*NoteDB)(nil)

const noteColumns = `id, user_id, title, content, tags, color, is_pinned, folder, created_at, updated_at`

// Create inserts a new note. The ID and both timestamps are set on note.
func (n *NoteDB) Create(ctx context.Context, note *model.Note) error {
	note.ID = xid.New().String()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	tags, err := encodeTags(note.Tags)
	if err != nil {
		return err
	}

	_, err = n.conn.ExecContext(ctx,
		`INSERT INTO notes (`+noteColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		tags,
		note.Color,
		note.IsPinned,
		note.Folder,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating note: %w", err)
	}
	return nil
}

// GetByID retrieves a single note by its ID.
func (n *NoteDB) GetByID(ctx context.Context, id string) (*model.Note, error) {
	note, err := scanNote(n.conn.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", id, err)
	}
	return note, nil
}

// List returns the user's notes matching filter: pinned notes first, then
// the most recently updated.
//
// The WHERE clause is assembled from fixed fragments only; every value
// goes through a ? placeholder.
func (n *NoteDB) List(ctx context.Context, userID string, filter repository.NoteFilter) ([]model.Note, error) {
	opts := filter.ListOptions.Normalize()

	where := []string{"user_id = ?"}
	args := []any{userID}

	if filter.Folder != "" {
		where = append(where, "folder = ?")
		args = append(args, filter.Folder)
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)")
		args = append(args, filter.Tag)
	}
	if filter.Search != "" {
		where = append(where, `(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		p := likePattern(filter.Search)
		args = append(args, p, p)
	}
	args = append(args, opts.Limit, opts.Offset)

	rows, err := n.conn.QueryContext(ctx,
		`SELECT `+noteColumns+`
		 FROM notes
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY is_pinned DESC, updated_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0, opts.Limit)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}
	return notes, nil
}

// Update overwrites the editable fields of a note and bumps updated_at.
func (n *NoteDB) Update(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now().UTC()

	tags, err := encodeTags(note.Tags)
	if err != nil {
		return err
	}

	result, err := n.conn.ExecContext(ctx,
		`UPDATE notes
		 SET title = ?, content = ?, tags = ?, color = ?, is_pinned = ?, folder = ?, updated_at = ?
		 WHERE id = ?`,
		note.Title,
		note.Content,
		tags,
		note.Color,
		note.IsPinned,
		note.Folder,
		note.UpdatedAt,
		note.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating note %s: %w", note.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", note.ID)
	}
	return nil
}

// Delete removes a note by its ID.
func (n *NoteDB) Delete(ctx context.Context, id string) error {
	result, err := n.conn.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting note %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("note", id)
	}
	return nil
}

// Folders lists the distinct non-empty folders the user has notes in.
func (n *NoteDB) Folders(ctx context.Context, userID string) ([]string, error) {
	return n.strings(ctx, "folders",
		`SELECT DISTINCT folder FROM notes
		 WHERE user_id = ? AND folder != ''
		 ORDER BY folder`,
		userID,
	)
}

// Tags lists the distinct tags used across the user's notes.
func (n *NoteDB) Tags(ctx context.Context, userID string) ([]string, error) {
	return n.strings(ctx, "tags",
		`SELECT DISTINCT t.value FROM notes, json_each(notes.tags) AS t
		 WHERE notes.user_id = ?
		 ORDER BY t.value`,
		userID,
	)
}

func (n *NoteDB) strings(ctx context.Context, what, query string, args ...any) ([]string, error) {
	rows, err := n.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing note %s: %w", what, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("sqlite: scanning note %s: %w", what, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating note %s: %w", what, err)
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	var note model.Note
	var tags string
	err := row.Scan(
		&note.ID,
		&note.UserID,
		&note.Title,
		&note.Content,
		&tags,
		&note.Color,
		&note.IsPinned,
		&note.Folder,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of note %s: %w", note.ID, err)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return &note, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tags: %w", err)
	}
	return string(b), nil
}
