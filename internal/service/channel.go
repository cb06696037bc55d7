package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/devanshk/tubestream/internal/apperror"
	"github.com/devanshk/tubestream/internal/model"
)

// ChannelProfile is the public projection of a user viewed as a channel,
// extended with the derived subscription values.  No credential field is
// ever part of this struct.
type ChannelProfile struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	Email                     string `json:"email"`
	FullName                  string `json:"fullName"`
	AvatarURL                 string `json:"avatar"`
	CoverImageURL             string `json:"coverImage"`
	SubscriberCount           int64  `json:"subscriberCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// ChannelService computes the read-only aggregation views: the channel
// profile and the resolved watch history.
type ChannelService struct {
	users  UserStore
	subs   SubscriptionStore
	videos VideoStore
}

func NewChannelService(users UserStore, subs SubscriptionStore, videos VideoStore) *ChannelService {
	return &ChannelService{users: users, subs: subs, videos: videos}
}

// Profile resolves a username into its channel view.  callerID may be
// empty for anonymous requests, in which case IsSubscribed is always
// false.
func (s *ChannelService) Profile(ctx context.Context, username, callerID string) (ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ChannelProfile{}, apperror.NewValidation("username is missing")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return ChannelProfile{}, apperror.NewNotFound("channel does not exist")
	}
	if err != nil {
		return ChannelProfile{}, apperror.NewInternal("failed to load channel", err)
	}
	stats, err := s.subs.Stats(ctx, u.ID, callerID)
	if err != nil {
		return ChannelProfile{}, apperror.NewInternal("failed to load channel stats", err)
	}
	return ChannelProfile{
		ID:                        u.ID,
		Username:                  u.Username,
		Email:                     u.Email,
		FullName:                  u.FullName,
		AvatarURL:                 u.AvatarURL,
		CoverImageURL:             u.CoverImageURL,
		SubscriberCount:           stats.SubscriberCount,
		ChannelsSubscribedToCount: stats.ChannelsSubscribedToCount,
		IsSubscribed:              stats.IsSubscribed,
	}, nil
}

// History returns the caller's watch history, most recent first, each
// entry carrying one collapsed owner record.  An empty history is an
// empty slice.
func (s *ChannelService) History(ctx context.Context, userID string) ([]model.WatchedVideo, error) {
	history, err := s.videos.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal("failed to load watch history", err)
	}
	return history, nil
}
