package model

import "time"

// Subscription is a directed follow edge in the `subscriptions` table:
// SubscriberID follows ChannelID.  At most one row exists per ordered
// pair, enforced by a unique key.  This core only reads subscriptions;
// creating and removing edges belongs to the subscription endpoints.
type Subscription struct {
	ID           uint64    // subscriptions.id
	SubscriberID string    // subscriptions.subscriber_id (users.id)
	ChannelID    string    // subscriptions.channel_id (users.id)
	CreatedAt    time.Time // subscriptions.created_at
}
