package model

import "time"

// User represents an account record as stored in the `users` table. The
// PasswordHash and RefreshTokenHash columns never leave the repository
// layer in API responses; handlers work with the Sanitized projection
// instead.
//
// Fields:
//  ID               – opaque UUID primary key.
//  Username         – unique handle, always stored lowercase.
//  Email            – unique email address.
//  FullName         – display name.
//  PasswordHash     – bcrypt hash of the password.
//  AvatarURL        – resolved avatar location; never empty once the row exists.
//  CoverImageURL    – resolved cover image location; may be empty.
//  RefreshTokenHash – SHA-256 hex of the single live refresh token, empty when
//                     the user has no session.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
	ID               string    // users.id
	Username         string    // users.username
	Email            string    // users.email
	FullName         string    // users.full_name
	PasswordHash     string    // users.password_hash
	AvatarURL        string    // users.avatar_url
	CoverImageURL    string    // users.cover_image_url
	RefreshTokenHash string    // users.refresh_token_hash (nullable)
	CreatedAt        time.Time // users.created_at
	UpdatedAt        time.Time // users.updated_at
}

// SanitizedUser is the outward projection of a User.  It deliberately has
// no password or refresh-token fields so a User can never be serialized
// with secrets by accident.
type SanitizedUser struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Sanitize strips the credential fields from a User.
func (u User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
