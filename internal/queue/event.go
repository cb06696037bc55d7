// Package queue defines message payloads exchanged over the message broker
// and the background consumer that acts on them.
package queue

// MediaReplacedEvent is published when a user replaces their avatar or
// cover image.  The superseded object is not deleted inline with the
// request; the cleanup consumer removes it from the media store
// asynchronously.
type MediaReplacedEvent struct {
	UserID     string `json:"user_id"`
	Field      string `json:"field"` // "avatar" or "cover_image"
	OldURL     string `json:"old_url"`
	ReplacedAt string `json:"replaced_at"`
}
