package model

import "time"

// Note defaults applied when a field is left empty.
const (
	DefaultNoteTitle = "Untitled Note"
	DefaultNoteColor = "default"
)

// Note is a user's free-form note, optionally grouped into a folder and
// tagged. Pinned notes are listed first.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	Color     string    `json:"color"`
	IsPinned  bool      `json:"isPinned"`
	Folder    string    `json:"folder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
