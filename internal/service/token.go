package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/devanshk/tubestream/internal/apperror"
	"github.com/devanshk/tubestream/internal/model"
	"github.com/devanshk/tubestream/internal/utils"
)

// TokenConfig carries the two signing secrets and lifetimes.  Access and
// refresh tokens never share a secret, so a refresh token can never be
// presented where an access token is expected.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenPair is a freshly issued access/refresh token pair.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// TokenService owns token signing, verification and the single-session
// rotation invariant: the user row holds at most one live refresh-token
// hash, and any presented token that no longer matches it is a replay.
type TokenService struct {
	users UserStore
	cfg   TokenConfig
}

func NewTokenService(users UserStore, cfg TokenConfig) *TokenService {
	return &TokenService{users: users, cfg: cfg}
}

// Issue signs a new access/refresh pair for the user.  Nothing is
// persisted; callers decide whether and how the refresh token is stored.
func (s *TokenService) Issue(userID string) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.cfg.AccessSecret, userID, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, apperror.NewInternal("failed to generate access token", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshSecret, userID, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, apperror.NewInternal("failed to generate refresh token", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Rotate issues a fresh pair and unconditionally overwrites the stored
// refresh-token hash.  Used by login, where there is no prior token to
// compare against.  Only the token column is written; the rest of the row
// is left untouched.
func (s *TokenService) Rotate(ctx context.Context, userID string) (TokenPair, error) {
	pair, err := s.Issue(userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.users.SetRefreshTokenHash(ctx, userID, utils.HashRefreshRaw(pair.Refresh.Token)); err != nil {
		return TokenPair{}, apperror.NewInternal("failed to save refresh token", err)
	}
	return pair, nil
}

// Refresh exchanges a presented refresh token for a new pair.  The token
// must verify against the refresh secret, name an existing user, and match
// the stored hash; the swap to the next hash is a single compare-and-swap
// so two concurrent exchanges of the same token cannot both win.  Every
// failure collapses into an authorization error so callers learn nothing
// about why a token was rejected.
func (s *TokenService) Refresh(ctx context.Context, presented string) (model.User, TokenPair, error) {
	if presented == "" {
		return model.User{}, TokenPair{}, apperror.NewAuthorization("unauthorized request")
	}
	userID, err := utils.VerifyToken(s.cfg.RefreshSecret, presented)
	if err != nil {
		return model.User{}, TokenPair{}, apperror.NewAuthorization("invalid refresh token")
	}
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, TokenPair{}, apperror.NewAuthorization("invalid refresh token")
	}
	if err != nil {
		return model.User{}, TokenPair{}, apperror.NewInternal("failed to load user", err)
	}
	presentedHash := utils.HashRefreshRaw(presented)
	if u.RefreshTokenHash == "" || presentedHash != u.RefreshTokenHash {
		// The stored value already moved to a newer token (or the session
		// was revoked): presenting this one again is a replay.
		return model.User{}, TokenPair{}, apperror.NewAuthorization("refresh token is expired or used")
	}
	pair, err := s.Issue(userID)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	swapped, err := s.users.SwapRefreshTokenHash(ctx, userID, presentedHash, utils.HashRefreshRaw(pair.Refresh.Token))
	if err != nil {
		return model.User{}, TokenPair{}, apperror.NewInternal("failed to save refresh token", err)
	}
	if !swapped {
		// Lost the race against a concurrent exchange of the same token.
		return model.User{}, TokenPair{}, apperror.NewAuthorization("refresh token is expired or used")
	}
	return u, pair, nil
}

// Revoke clears the stored refresh token, ending the session.  Revoking a
// user with no session is a no-op, so logout stays idempotent.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	if err := s.users.SetRefreshTokenHash(ctx, userID, ""); err != nil {
		return apperror.NewInternal("failed to clear refresh token", err)
	}
	return nil
}
