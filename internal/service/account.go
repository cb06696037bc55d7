package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devanshk/tubestream/internal/apperror"
	"github.com/devanshk/tubestream/internal/model"
	"github.com/devanshk/tubestream/internal/queue"
	"github.com/devanshk/tubestream/internal/repository"
	"github.com/devanshk/tubestream/internal/uploader"
	"github.com/devanshk/tubestream/internal/utils"
)

// MediaEventPublisher publishes a media-replaced event.  Injected so tests
// can observe events without a broker; production wiring passes the result
// of queue.NewMediaReplacedPublisher, or nil when no broker is configured.
type MediaEventPublisher func(ctx context.Context, ev queue.MediaReplacedEvent) error

// AccountService orchestrates registration, login, logout and the profile
// update workflows over the user store, the media uploader and the token
// service.
type AccountService struct {
	users      UserStore
	videos     VideoStore
	media      uploader.Uploader
	tokens     *TokenService
	bcryptCost int
	publish    MediaEventPublisher
}

func NewAccountService(users UserStore, videos VideoStore, media uploader.Uploader,
	tokens *TokenService, bcryptCost int, publish MediaEventPublisher) *AccountService {
	if publish == nil {
		publish = func(context.Context, queue.MediaReplacedEvent) error { return nil }
	}
	return &AccountService{
		users:      users,
		videos:     videos,
		media:      media,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		publish:    publish,
	}
}

// RegisterInput is the registration payload.  Avatar is required;
// CoverImage may be nil.
type RegisterInput struct {
	FullName   string
	Username   string
	Email      string
	Password   string
	Avatar     *uploader.Asset
	CoverImage *uploader.Asset
}

// Register creates a new user or fails without persisting anything.  The
// avatar upload must succeed before the row is written; a failed cover
// image upload degrades to an empty cover URL because the field is
// optional.  That asymmetry is deliberate.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.SanitizedUser, error) {
	fullName := strings.TrimSpace(in.FullName)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	if fullName == "" || username == "" || email == "" || strings.TrimSpace(in.Password) == "" {
		return model.SanitizedUser{}, apperror.NewValidation("all fields are required")
	}
	if in.Avatar == nil {
		return model.SanitizedUser{}, apperror.NewValidation("avatar file is required")
	}

	_, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if err == nil {
		return model.SanitizedUser{}, apperror.NewConflict("user with this username or email already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.SanitizedUser{}, apperror.NewInternal("failed to check existing user", err)
	}

	avatar, err := s.media.Upload(ctx, in.Avatar)
	if err != nil || avatar.URL == "" {
		return model.SanitizedUser{}, apperror.NewValidation("could not resolve avatar file")
	}
	coverURL := ""
	if in.CoverImage != nil {
		// Optional asset: upload failure is absorbed, not fatal.
		if cover, err := s.media.Upload(ctx, in.CoverImage); err == nil {
			coverURL = cover.URL
		}
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to hash password", err)
	}
	id := uuid.NewString()
	err = s.users.Create(ctx, model.User{
		ID:            id,
		Username:      username,
		Email:         email,
		FullName:      fullName,
		PasswordHash:  hash,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return model.SanitizedUser{}, apperror.NewConflict("user with this username or email already exists")
	}
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to create user", err)
	}

	// Read back the created row to build the sanitized response; a miss
	// here is a storage consistency fault and is surfaced, not retried.
	created, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to load created user", err)
	}
	return created.Sanitize(), nil
}

// LoginInput identifies the user by username or email plus password.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// Login verifies credentials and establishes a session: a fresh token pair
// is issued and its refresh half stored on the user, replacing whatever
// session existed before.
func (s *AccountService) Login(ctx context.Context, in LoginInput) (model.SanitizedUser, TokenPair, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return model.SanitizedUser{}, TokenPair{}, apperror.NewValidation("username or email is required")
	}
	if in.Password == "" {
		return model.SanitizedUser{}, TokenPair{}, apperror.NewValidation("password is required")
	}

	u, err := s.users.GetByUsernameOrEmail(ctx, username, email)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SanitizedUser{}, TokenPair{}, apperror.NewNotFound("user does not exist")
	}
	if err != nil {
		return model.SanitizedUser{}, TokenPair{}, apperror.NewInternal("failed to load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return model.SanitizedUser{}, TokenPair{}, apperror.NewAuthentication("invalid user credentials")
	}

	pair, err := s.tokens.Rotate(ctx, u.ID)
	if err != nil {
		return model.SanitizedUser{}, TokenPair{}, err
	}
	return u.Sanitize(), pair, nil
}

// Logout revokes the caller's session.  Idempotent.
func (s *AccountService) Logout(ctx context.Context, userID string) error {
	return s.tokens.Revoke(ctx, userID)
}

// ChangePassword verifies the old password and replaces the hash.  The
// refresh token is left alone, so existing sessions stay valid after a
// password change.
func (s *AccountService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperror.NewValidation("old and new password are required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NewNotFound("user not found")
	}
	if err != nil {
		return apperror.NewInternal("failed to load user", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, oldPassword) {
		return apperror.NewAuthentication("invalid old password")
	}
	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperror.NewInternal("failed to hash password", err)
	}
	if err := s.users.SetPasswordHash(ctx, userID, hash); err != nil {
		return apperror.NewInternal("failed to update password", err)
	}
	return nil
}

// CurrentUser returns the caller's sanitized record.
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (model.SanitizedUser, error) {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SanitizedUser{}, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to load user", err)
	}
	return u.Sanitize(), nil
}

// UpdateDetails overwrites fullName, username and email.  All three are
// required; username is normalized to lowercase.
func (s *AccountService) UpdateDetails(ctx context.Context, userID, fullName, username, email string) (model.SanitizedUser, error) {
	fullName = strings.TrimSpace(fullName)
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)
	if fullName == "" || username == "" || email == "" {
		return model.SanitizedUser{}, apperror.NewValidation("all fields are required")
	}
	err := s.users.UpdateDetails(ctx, userID, fullName, username, email)
	if errors.Is(err, repository.ErrDuplicate) {
		return model.SanitizedUser{}, apperror.NewConflict("username or email already taken")
	}
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to update account details", err)
	}
	return s.CurrentUser(ctx, userID)
}

// UpdateAvatar uploads the new avatar, swaps the URL and queues the old
// object for cleanup.  The event publish is best effort; a lost event
// leaks one orphaned object at worst.
func (s *AccountService) UpdateAvatar(ctx context.Context, userID string, asset *uploader.Asset) (model.SanitizedUser, error) {
	return s.updateMedia(ctx, userID, asset, "avatar")
}

// UpdateCoverImage is the cover-image counterpart of UpdateAvatar.
func (s *AccountService) UpdateCoverImage(ctx context.Context, userID string, asset *uploader.Asset) (model.SanitizedUser, error) {
	return s.updateMedia(ctx, userID, asset, "cover_image")
}

func (s *AccountService) updateMedia(ctx context.Context, userID string, asset *uploader.Asset, field string) (model.SanitizedUser, error) {
	if asset == nil {
		return model.SanitizedUser{}, apperror.NewValidation(strings.ReplaceAll(field, "_", " ") + " file is missing")
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SanitizedUser{}, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to load user", err)
	}

	ref, err := s.media.Upload(ctx, asset)
	if err != nil || ref.URL == "" {
		return model.SanitizedUser{}, apperror.NewValidation("could not resolve uploaded file")
	}

	var oldURL string
	switch field {
	case "avatar":
		oldURL = u.AvatarURL
		err = s.users.SetAvatarURL(ctx, userID, ref.URL)
	default:
		oldURL = u.CoverImageURL
		err = s.users.SetCoverImageURL(ctx, userID, ref.URL)
	}
	if err != nil {
		return model.SanitizedUser{}, apperror.NewInternal("failed to update "+field, err)
	}

	if pubErr := s.publish(ctx, queue.MediaReplacedEvent{
		UserID:     userID,
		Field:      field,
		OldURL:     oldURL,
		ReplacedAt: time.Now().UTC().Format(time.RFC3339),
	}); pubErr != nil {
		log.Printf("account: media cleanup event not published (user=%s field=%s): %v", userID, field, pubErr)
	}

	return s.CurrentUser(ctx, userID)
}

// RecordWatch appends a video to the caller's watch history.
func (s *AccountService) RecordWatch(ctx context.Context, userID, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return apperror.NewValidation("video id is required")
	}
	if err := s.videos.AppendWatch(ctx, userID, videoID); err != nil {
		return apperror.NewInternal("failed to record watch", err)
	}
	return nil
}
