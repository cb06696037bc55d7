package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/devanshk/tubestream/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func userRows(u model.User) *sqlmock.Rows {
	refresh := sql.NullString{String: u.RefreshTokenHash, Valid: u.RefreshTokenHash != ""}
	return sqlmock.NewRows([]string{"id", "username", "email", "full_name", "password_hash",
		"avatar_url", "cover_image_url", "refresh_token_hash", "created_at", "updated_at"}).
		AddRow(u.ID, u.Username, u.Email, u.FullName, u.PasswordHash,
			u.AvatarURL, u.CoverImageURL, refresh, time.Now(), time.Now())
}

func TestUserRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)
	u := model.User{ID: "u1", Username: "alice", Email: "a@example.com",
		FullName: "Alice", PasswordHash: "hash", AvatarURL: "https://cdn/x.png"}

	insert := regexp.QuoteMeta("INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES (?,?,?,?,?,?,?)")

	mock.ExpectExec(insert).
		WithArgs(u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverImageURL).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.Create(context.Background(), u))

	// Unique key violation surfaces as ErrDuplicate.
	mock.ExpectExec(insert).
		WithArgs(u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverImageURL).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))
	require.ErrorIs(t, r.Create(context.Background(), u), ErrDuplicate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByUsername_NormalizesInput(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)
	stored := model.User{ID: "u1", Username: "alice", RefreshTokenHash: "rt-hash"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE username=? LIMIT 1")).
		WithArgs("alice").
		WillReturnRows(userRows(stored))

	u, err := r.GetByUsername(context.Background(), "  ALICE ")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "rt-hash", u.RefreshTokenHash)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SwapRefreshTokenHash(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)
	swap := regexp.QuoteMeta("UPDATE users SET refresh_token_hash=? WHERE id=? AND refresh_token_hash=?")

	// Stored value still matches: one row updated, swap wins.
	mock.ExpectExec(swap).WithArgs("new", "u1", "old").WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := r.SwapRefreshTokenHash(context.Background(), "u1", "old", "new")
	require.NoError(t, err)
	require.True(t, ok)

	// Stored value already moved: zero rows, swap lost.
	mock.ExpectExec(swap).WithArgs("new", "u1", "stale").WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = r.SwapRefreshTokenHash(context.Background(), "u1", "stale", "new")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_SetRefreshTokenHash_EmptyClearsColumn(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET refresh_token_hash=NULLIF(?, '') WHERE id=?")).
		WithArgs("", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.SetRefreshTokenHash(context.Background(), "u1", ""))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_UpdateDetails_DuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	r := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET full_name=?, username=?, email=? WHERE id=?")).
		WithArgs("Alice B", "bob", "alice@example.com", "u1").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'bob' for key 'users.username'"))

	err := r.UpdateDetails(context.Background(), "u1", "Alice B", " BOB ", "alice@example.com")
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}
