package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/codesense/internal/apperror"
	"github.com/sakif/codesense/internal/model"
)

// newTestDB returns a fresh in-memory database, closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a password account and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$10$hash",
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "dup@example.com")

	err := db.Users().Create(context.Background(), &model.User{
		Name:         "Other",
		Email:        "dup@example.com",
		PasswordHash: "hash",
	})

	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_ManyPasswordAccountsWithoutGitHubID(t *testing.T) {
	db := newTestDB(t)

	// github_id is stored as NULL, so the UNIQUE column doesn't collide
	createTestUser(t, db, "a@example.com")
	createTestUser(t, db, "b@example.com")
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestUserGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "getbyid@example.com")

	found, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if found.Email != "getbyid@example.com" {
		t.Errorf("Email = %q, want %q", found.Email, "getbyid@example.com")
	}
	if found.PasswordHash != "$2a$10$hash" {
		t.Errorf("PasswordHash = %q, want stored hash", found.PasswordHash)
	}
	if found.GitHubID != 0 {
		t.Errorf("GitHubID = %d, want 0", found.GitHubID)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "nonexistent-id")

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "login@example.com")

	found, err := db.Users().GetByEmail(context.Background(), "login@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
}

func TestUserGetByEmail_IgnoresGitHubAccounts(t *testing.T) {
	db := newTestDB(t)
	gh := &model.User{GitHubID: 42, Login: "octo", Email: "octo@example.com"}
	if err := db.Users().UpsertGitHub(context.Background(), gh); err != nil {
		t.Fatalf("UpsertGitHub() error = %v", err)
	}

	_, err := db.Users().GetByEmail(context.Background(), "octo@example.com")

	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GITHUB UPSERT TESTS
// =========================================================================

func TestUserUpsertGitHub_NewUser(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		GitHubID:  55555,
		Login:     "new_upsert_user",
		Email:     "new@example.com",
		AvatarURL: "https://example.com/new.png",
	}
	if err := db.Users().UpsertGitHub(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHub() (new) error = %v", err)
	}

	if user.ID == "" {
		t.Error("UpsertGitHub() did not set user.ID for new user")
	}
	if user.Name != "new_upsert_user" {
		t.Errorf("Name = %q, want the login as default", user.Name)
	}

	found, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() after UpsertGitHub: %v", err)
	}
	if found.GitHubID != 55555 {
		t.Errorf("GitHubID = %d, want 55555", found.GitHubID)
	}
}

func TestUserUpsertGitHub_ExistingUser_UpdatesProfile(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{GitHubID: 66666, Login: "original_login", Email: "old@example.com"}
	if err := db.Users().UpsertGitHub(context.Background(), first); err != nil {
		t.Fatalf("UpsertGitHub() first login: %v", err)
	}

	second := &model.User{GitHubID: 66666, Login: "updated_login", Email: "new@example.com"}
	if err := db.Users().UpsertGitHub(context.Background(), second); err != nil {
		t.Fatalf("UpsertGitHub() second login: %v", err)
	}

	// Same GitHub account, same internal ID
	if second.ID != first.ID {
		t.Errorf("UpsertGitHub() changed user ID: got %q, want %q", second.ID, first.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("UpsertGitHub() changed CreatedAt: got %v, want %v", second.CreatedAt, first.CreatedAt)
	}

	found, err := db.Users().GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID() after second upsert: %v", err)
	}
	if found.Login != "updated_login" {
		t.Errorf("Login after upsert = %q, want %q", found.Login, "updated_login")
	}
	if found.Email != "new@example.com" {
		t.Errorf("Email after upsert = %q, want %q", found.Email, "new@example.com")
	}
}
