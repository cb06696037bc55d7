package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/devanshk/tubestream/internal/model"
)

// UserRepo owns the 'users' table: identity fields, password hash and the
// single live refresh-token hash per user.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,email,full_name,password_hash,avatar_url,cover_image_url,refresh_token_hash,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var refresh sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.AvatarURL, &u.CoverImageURL, &refresh, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.RefreshTokenHash = refresh.String
	return u, nil
}

// isDuplicateKey reports MySQL error 1062 (unique key violation).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts a fully formed user row.  The caller supplies the id and
// the already-hashed password; username must already be lowercased.
func (r *UserRepo) Create(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.AvatarURL, u.CoverImageURL)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(username))))
}

// GetByUsernameOrEmail fetches a user matching either handle.  Used by the
// registration uniqueness check and by login.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? OR email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(username)), strings.TrimSpace(email)))
}

// SetRefreshTokenHash unconditionally overwrites the stored refresh-token
// hash.  An empty hash clears the session (NULL column).  This is the
// partial update used by login and logout; no other column is touched.
func (r *UserRepo) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=NULLIF(?, '') WHERE id=?", hash, id)
	return err
}

// SwapRefreshTokenHash replaces the stored hash only if it still equals
// oldHash.  It returns false when the row was not updated, meaning a
// concurrent rotation already moved the token; the caller must treat the
// presented token as replayed.
func (r *UserRepo) SwapRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET refresh_token_hash=? WHERE id=? AND refresh_token_hash=?",
		newHash, id, oldHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SetPasswordHash replaces the password hash only, skipping every other
// column.
func (r *UserRepo) SetPasswordHash(ctx context.Context, id, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateDetails overwrites the three account detail fields.  A unique key
// violation on the new username or email comes back as ErrDuplicate.
func (r *UserRepo) UpdateDetails(ctx context.Context, id, fullName, username, email string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=?, username=?, email=? WHERE id=?",
		fullName, strings.ToLower(strings.TrimSpace(username)), strings.TrimSpace(email), id)
	if isDuplicateKey(err) {
		return ErrDuplicate
	}
	return err
}

// SetAvatarURL replaces the avatar reference.
func (r *UserRepo) SetAvatarURL(ctx context.Context, id, url string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET avatar_url=? WHERE id=?", url, id)
	return err
}

// SetCoverImageURL replaces the cover image reference.
func (r *UserRepo) SetCoverImageURL(ctx context.Context, id, url string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET cover_image_url=? WHERE id=?", url, id)
	return err
}
