package repository

import (
	"context"
	"database/sql"

	"github.com/devanshk/tubestream/internal/model"
)

// VideoRepo reads the 'videos' table and owns the 'watch_history' append
// log.  Videos themselves are written by the video endpoints, not here.
type VideoRepo struct{ DB *sql.DB }

func NewVideoRepo(db *sql.DB) *VideoRepo { return &VideoRepo{DB: db} }

// AppendWatch records that the user watched a video.  Re-watching appends
// a new row so the history keeps its most-recent-first order on read.
func (r *VideoRepo) AppendWatch(ctx context.Context, userID, videoID string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO watch_history (user_id, video_id) VALUES (?,?)",
		userID, videoID)
	return err
}

// WatchHistory resolves the user's watch history into video projections,
// each joined with a single collapsed owner record.  An empty history
// returns an empty slice, not an error.
func (r *VideoRepo) WatchHistory(ctx context.Context, userID string) ([]model.WatchedVideo, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT v.id, v.title, v.description, v.video_url, v.thumbnail_url,
			v.duration_secs, v.views, v.created_at,
			u.full_name, u.username, u.avatar_url
		FROM watch_history wh
		JOIN videos v ON v.id = wh.video_id
		JOIN users u  ON u.id = v.owner_id
		WHERE wh.user_id = ?
		ORDER BY wh.watched_at DESC, wh.id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.WatchedVideo{}
	for rows.Next() {
		var w model.WatchedVideo
		if err := rows.Scan(&w.ID, &w.Title, &w.Description, &w.VideoURL,
			&w.ThumbnailURL, &w.DurationSecs, &w.Views, &w.CreatedAt,
			&w.Owner.FullName, &w.Owner.Username, &w.Owner.AvatarURL); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
