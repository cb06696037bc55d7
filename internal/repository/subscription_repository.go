package repository

import (
	"context"
	"database/sql"
)

// SubscriptionRepo reads the 'subscriptions' follow edges.  This core never
// writes edges; it only counts and tests them for the channel profile view.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// ChannelStats holds the three derived values computed for a channel
// profile.
type ChannelStats struct {
	SubscriberCount           int64
	ChannelsSubscribedToCount int64
	IsSubscribed              bool
}

// Stats computes, in one round trip: how many users follow the channel, how
// many channels the channel's owner follows, and whether callerID follows
// the channel.  An empty callerID (anonymous request) yields
// IsSubscribed=false because no edge can match the empty id.
func (r *SubscriptionRepo) Stats(ctx context.Context, channelID, callerID string) (ChannelStats, error) {
	var s ChannelStats
	err := r.DB.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id=?),
			(SELECT COUNT(*) FROM subscriptions WHERE subscriber_id=?),
			EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id=? AND channel_id=?)`,
		channelID, channelID, callerID, channelID).
		Scan(&s.SubscriberCount, &s.ChannelsSubscribedToCount, &s.IsSubscribed)
	return s, err
}
