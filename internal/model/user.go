// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// An account is created either with email + password or through GitHub
// OAuth, so both identities are optional on their own:
//   - GitHubID is 0 for password accounts (stored as NULL, so the UNIQUE
//     constraint only applies to real GitHub IDs).
//   - PasswordHash is empty for GitHub accounts and never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     int64     `json:"githubId,omitempty"` // GitHub's numeric user ID
	Login        string    `json:"login,omitempty"`    // GitHub username, e.g. "sakif"
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
