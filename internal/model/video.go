package model

import "time"

// Video mirrors the `videos` table.  Videos are owned by the video
// endpoints; this core reads them only to resolve watch history.
type Video struct {
	ID           string    // videos.id
	OwnerID      string    // videos.owner_id (users.id)
	Title        string    // videos.title
	Description  string    // videos.description
	VideoURL     string    // videos.video_url
	ThumbnailURL string    // videos.thumbnail_url
	DurationSecs uint32    // videos.duration_secs
	Views        uint64    // videos.views
	CreatedAt    time.Time // videos.created_at
}

// VideoOwner is the minimal owner projection attached to each watch
// history entry: display fields only, one owner per video.
type VideoOwner struct {
	FullName  string `json:"fullName"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// WatchedVideo is a watch history entry: the video's display fields plus
// its collapsed owner record, ordered most-recent-first.
type WatchedVideo struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	VideoURL     string     `json:"videoFile"`
	ThumbnailURL string     `json:"thumbnail"`
	DurationSecs uint32     `json:"duration"`
	Views        uint64     `json:"views"`
	CreatedAt    time.Time  `json:"createdAt"`
	Owner        VideoOwner `json:"owner"`
}
