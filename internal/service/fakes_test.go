package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/devanshk/tubestream/internal/model"
	"github.com/devanshk/tubestream/internal/repository"
	"github.com/devanshk/tubestream/internal/uploader"
)

// fakeUserStore is an in-memory UserStore keyed by id.  Error fields force
// specific failures; swapOK mirrors the compare-and-swap result.
type fakeUserStore struct {
	users map[string]*model.User

	createErr error
	getErr    error
	setErr    error
	swapErr   error
	failSwap  bool
}

func newFakeUserStore(users ...model.User) *fakeUserStore {
	s := &fakeUserStore{users: map[string]*model.User{}}
	for i := range users {
		u := users[i]
		s.users[u.ID] = &u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, u model.User) error {
	if s.createErr != nil {
		return s.createErr
	}
	for _, ex := range s.users {
		if ex.Username == u.Username || ex.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = &u
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	if s.getErr != nil {
		return model.User{}, s.getErr
	}
	if u, ok := s.users[id]; ok {
		return *u, nil
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	if s.getErr != nil {
		return model.User{}, s.getErr
	}
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range s.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) GetByUsernameOrEmail(_ context.Context, username, email string) (model.User, error) {
	if s.getErr != nil {
		return model.User{}, s.getErr
	}
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return *u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func (s *fakeUserStore) SetRefreshTokenHash(_ context.Context, id, hash string) error {
	if s.setErr != nil {
		return s.setErr
	}
	if u, ok := s.users[id]; ok {
		u.RefreshTokenHash = hash
	}
	return nil
}

func (s *fakeUserStore) SwapRefreshTokenHash(_ context.Context, id, oldHash, newHash string) (bool, error) {
	if s.swapErr != nil {
		return false, s.swapErr
	}
	if s.failSwap {
		return false, nil
	}
	u, ok := s.users[id]
	if !ok || u.RefreshTokenHash != oldHash {
		return false, nil
	}
	u.RefreshTokenHash = newHash
	return true, nil
}

func (s *fakeUserStore) SetPasswordHash(_ context.Context, id, hash string) error {
	if s.setErr != nil {
		return s.setErr
	}
	if u, ok := s.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (s *fakeUserStore) UpdateDetails(_ context.Context, id, fullName, username, email string) error {
	if s.setErr != nil {
		return s.setErr
	}
	username = strings.ToLower(strings.TrimSpace(username))
	for otherID, other := range s.users {
		if otherID != id && (other.Username == username || other.Email == email) {
			return repository.ErrDuplicate
		}
	}
	if u, ok := s.users[id]; ok {
		u.FullName, u.Username, u.Email = fullName, username, email
	}
	return nil
}

func (s *fakeUserStore) SetAvatarURL(_ context.Context, id, url string) error {
	if s.setErr != nil {
		return s.setErr
	}
	if u, ok := s.users[id]; ok {
		u.AvatarURL = url
	}
	return nil
}

func (s *fakeUserStore) SetCoverImageURL(_ context.Context, id, url string) error {
	if s.setErr != nil {
		return s.setErr
	}
	if u, ok := s.users[id]; ok {
		u.CoverImageURL = url
	}
	return nil
}

// fakeUploader resolves every asset to a fixed URL unless told to fail.
// failOn limits failures to a single filename so the required/optional
// asymmetry can be exercised.
type fakeUploader struct {
	url      string
	err      error
	emptyURL bool
	failOn   string
	uploads  []string
	removed  []string
}

func (f *fakeUploader) Upload(_ context.Context, a *uploader.Asset) (uploader.Reference, error) {
	if a == nil {
		return uploader.Reference{}, errors.New("nil asset")
	}
	f.uploads = append(f.uploads, a.Filename)
	if f.err != nil && (f.failOn == "" || f.failOn == a.Filename) {
		return uploader.Reference{}, f.err
	}
	if f.emptyURL {
		return uploader.Reference{}, nil
	}
	return uploader.Reference{URL: f.url + "/" + a.Filename, ProviderID: a.Filename}, nil
}

func (f *fakeUploader) Remove(_ context.Context, providerID string) error {
	f.removed = append(f.removed, providerID)
	return nil
}

// fakeSubStore returns canned channel stats.
type fakeSubStore struct {
	stats map[string]repository.ChannelStats // keyed channelID + "|" + callerID
	err   error
}

func (f *fakeSubStore) Stats(_ context.Context, channelID, callerID string) (repository.ChannelStats, error) {
	if f.err != nil {
		return repository.ChannelStats{}, f.err
	}
	return f.stats[channelID+"|"+callerID], nil
}

// fakeVideoStore records appends and serves a canned history.
type fakeVideoStore struct {
	history   map[string][]model.WatchedVideo
	appends   []string // "userID|videoID"
	appendErr error
	histErr   error
}

func (f *fakeVideoStore) AppendWatch(_ context.Context, userID, videoID string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends = append(f.appends, userID+"|"+videoID)
	return nil
}

func (f *fakeVideoStore) WatchHistory(_ context.Context, userID string) ([]model.WatchedVideo, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
	if h, ok := f.history[userID]; ok {
		return h, nil
	}
	return []model.WatchedVideo{}, nil
}
