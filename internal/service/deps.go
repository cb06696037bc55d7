// Package service contains the account workflow, token lifecycle and
// channel aggregation logic.  Services depend on narrow store interfaces
// so tests can substitute fakes for the MySQL repositories.
package service

import (
	"context"

	"github.com/devanshk/tubestream/internal/model"
	"github.com/devanshk/tubestream/internal/repository"
)

// UserStore is the slice of the user repository the services need.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) (model.User, error)
	SetRefreshTokenHash(ctx context.Context, id, hash string) error
	SwapRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	UpdateDetails(ctx context.Context, id, fullName, username, email string) error
	SetAvatarURL(ctx context.Context, id, url string) error
	SetCoverImageURL(ctx context.Context, id, url string) error
}

// SubscriptionStore exposes the derived subscription counts.
type SubscriptionStore interface {
	Stats(ctx context.Context, channelID, callerID string) (repository.ChannelStats, error)
}

// VideoStore exposes the watch history log and its resolution.
type VideoStore interface {
	AppendWatch(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]model.WatchedVideo, error)
}
