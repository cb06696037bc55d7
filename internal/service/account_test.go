package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devanshk/tubestream/internal/apperror"
	"github.com/devanshk/tubestream/internal/model"
	"github.com/devanshk/tubestream/internal/queue"
	"github.com/devanshk/tubestream/internal/uploader"
	"github.com/devanshk/tubestream/internal/utils"
)

const testBcryptCost = 4 // bcrypt.MinCost, keeps hashing fast in tests

func asset(name string) *uploader.Asset {
	return &uploader.Asset{Filename: name, Content: strings.NewReader("bytes")}
}

type accountFixture struct {
	store    *fakeUserStore
	videos   *fakeVideoStore
	media    *fakeUploader
	tokens   *TokenService
	accounts *AccountService
	events   []queue.MediaReplacedEvent
}

func newAccountFixture(users ...model.User) *accountFixture {
	f := &accountFixture{
		store:  newFakeUserStore(users...),
		videos: &fakeVideoStore{history: map[string][]model.WatchedVideo{}},
		media:  &fakeUploader{url: "https://cdn.example.com"},
	}
	f.tokens = NewTokenService(f.store, testTokenConfig())
	f.accounts = NewAccountService(f.store, f.videos, f.media, f.tokens, testBcryptCost,
		func(_ context.Context, ev queue.MediaReplacedEvent) error {
			f.events = append(f.events, ev)
			return nil
		})
	return f
}

func registerInput() RegisterInput {
	return RegisterInput{
		FullName: "Alice Example",
		Username: "Alice",
		Email:    "alice@example.com",
		Password: "s3cret",
		Avatar:   asset("avatar.png"),
	}
}

func existingUser(id, username string) model.User {
	hash, _ := utils.HashPassword("s3cret", testBcryptCost)
	return model.User{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		FullName:     username + " test",
		PasswordHash: hash,
		AvatarURL:    "https://cdn.example.com/old-avatar.png",
	}
}

func TestRegister_BlankFieldsAreRejectedWithoutPersisting(t *testing.T) {
	blanks := map[string]func(*RegisterInput){
		"fullName": func(in *RegisterInput) { in.FullName = "   " },
		"username": func(in *RegisterInput) { in.Username = "" },
		"email":    func(in *RegisterInput) { in.Email = " " },
		"password": func(in *RegisterInput) { in.Password = "" },
	}
	for field, blank := range blanks {
		t.Run(field, func(t *testing.T) {
			f := newAccountFixture()
			in := registerInput()
			blank(&in)
			_, err := f.accounts.Register(context.Background(), in)
			require.True(t, apperror.IsKind(err, apperror.Validation))
			require.Empty(t, f.store.users)
		})
	}
}

func TestRegister_MissingAvatarIsRejected(t *testing.T) {
	f := newAccountFixture()
	in := registerInput()
	in.Avatar = nil
	_, err := f.accounts.Register(context.Background(), in)
	require.True(t, apperror.IsKind(err, apperror.Validation))
	require.Empty(t, f.store.users)
	require.Empty(t, f.media.uploads) // nothing was sent to the media store
}

func TestRegister_DuplicateUsernameOrEmailConflicts(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))

	// Same username, different case.
	in := registerInput()
	in.Email = "other@example.com"
	_, err := f.accounts.Register(context.Background(), in)
	require.True(t, apperror.IsKind(err, apperror.Conflict))

	// Same email, different username.
	in = registerInput()
	in.Username = "someoneelse"
	_, err = f.accounts.Register(context.Background(), in)
	require.True(t, apperror.IsKind(err, apperror.Conflict))
}

func TestRegister_AvatarUploadFailureAborts(t *testing.T) {
	f := newAccountFixture()
	f.media.err = errors.New("upload blew up")
	_, err := f.accounts.Register(context.Background(), registerInput())
	require.True(t, apperror.IsKind(err, apperror.Validation))
	require.Empty(t, f.store.users)
}

func TestRegister_CoverFailureDegradesToEmptyURL(t *testing.T) {
	f := newAccountFixture()
	f.media.err = errors.New("cover upload failed")
	f.media.failOn = "cover.png" // avatar still succeeds

	in := registerInput()
	in.CoverImage = asset("cover.png")
	u, err := f.accounts.Register(context.Background(), in)
	require.NoError(t, err)
	require.NotEmpty(t, u.AvatarURL)
	require.Empty(t, u.CoverImageURL)
}

func TestRegister_NormalizesUsernameAndHashesPassword(t *testing.T) {
	f := newAccountFixture()
	u, err := f.accounts.Register(context.Background(), registerInput())
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	stored := f.store.users[u.ID]
	require.NotEqual(t, "s3cret", stored.PasswordHash)
	require.True(t, utils.VerifyPassword(stored.PasswordHash, "s3cret"))
}

func TestSanitizedUserNeverSerializesSecrets(t *testing.T) {
	f := newAccountFixture()
	u, err := f.accounts.Register(context.Background(), registerInput())
	require.NoError(t, err)

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	body := strings.ToLower(string(raw))
	require.NotContains(t, body, "password")
	require.NotContains(t, body, "refresh")
}

func TestLogin_SuccessEstablishesSession(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))

	u, pair, err := f.accounts.Login(context.Background(), LoginInput{Username: "Alice", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.NotEqual(t, pair.Access.Token, pair.Refresh.Token)

	// The refresh half is persisted (hashed) for later comparison.
	require.Equal(t, utils.HashRefreshRaw(pair.Refresh.Token), f.store.users["u1"].RefreshTokenHash)

	// Email-only login works too.
	_, _, err = f.accounts.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "s3cret"})
	require.NoError(t, err)
}

func TestLogin_FailureKinds(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))

	_, _, err := f.accounts.Login(context.Background(), LoginInput{Password: "s3cret"})
	require.True(t, apperror.IsKind(err, apperror.Validation))

	_, _, err = f.accounts.Login(context.Background(), LoginInput{Username: "alice"})
	require.True(t, apperror.IsKind(err, apperror.Validation))

	_, _, err = f.accounts.Login(context.Background(), LoginInput{Username: "nobody", Password: "s3cret"})
	require.True(t, apperror.IsKind(err, apperror.NotFound))

	_, _, err = f.accounts.Login(context.Background(), LoginInput{Username: "alice", Password: "wrong"})
	require.True(t, apperror.IsKind(err, apperror.Authentication))
}

func TestChangePassword(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))

	err := f.accounts.ChangePassword(context.Background(), "u1", "wrong", "newpass")
	require.True(t, apperror.IsKind(err, apperror.Authentication))

	require.NoError(t, f.accounts.ChangePassword(context.Background(), "u1", "s3cret", "newpass"))
	require.True(t, utils.VerifyPassword(f.store.users["u1"].PasswordHash, "newpass"))

	// Existing session survives a password change.
	_, pair, err := f.accounts.Login(context.Background(), LoginInput{Username: "alice", Password: "newpass"})
	require.NoError(t, err)
	require.NoError(t, f.accounts.ChangePassword(context.Background(), "u1", "newpass", "again"))
	_, _, err = f.tokens.Refresh(context.Background(), pair.Refresh.Token)
	require.NoError(t, err)
}

func TestUpdateDetails(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"), existingUser("u2", "bob"))

	_, err := f.accounts.UpdateDetails(context.Background(), "u1", "Alice B", "", "alice@example.com")
	require.True(t, apperror.IsKind(err, apperror.Validation))

	_, err = f.accounts.UpdateDetails(context.Background(), "u1", "Alice B", "BOB", "alice@example.com")
	require.True(t, apperror.IsKind(err, apperror.Conflict))

	u, err := f.accounts.UpdateDetails(context.Background(), "u1", "Alice B", "ALICE2", "alice2@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice2", u.Username)
	require.Equal(t, "Alice B", u.FullName)
}

func TestUpdateAvatar_SwapsURLAndQueuesCleanup(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))

	_, err := f.accounts.UpdateAvatar(context.Background(), "u1", nil)
	require.True(t, apperror.IsKind(err, apperror.Validation))

	u, err := f.accounts.UpdateAvatar(context.Background(), "u1", asset("new-avatar.png"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/new-avatar.png", u.AvatarURL)

	require.Len(t, f.events, 1)
	require.Equal(t, "avatar", f.events[0].Field)
	require.Equal(t, "https://cdn.example.com/old-avatar.png", f.events[0].OldURL)
}

func TestUpdateCoverImage_UploadFaultIsValidation(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))
	f.media.emptyURL = true
	_, err := f.accounts.UpdateCoverImage(context.Background(), "u1", asset("cover.png"))
	require.True(t, apperror.IsKind(err, apperror.Validation))
	require.Empty(t, f.events)
}

func TestRecordWatch(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))

	err := f.accounts.RecordWatch(context.Background(), "u1", "  ")
	require.True(t, apperror.IsKind(err, apperror.Validation))

	require.NoError(t, f.accounts.RecordWatch(context.Background(), "u1", "v1"))
	require.Equal(t, []string{"u1|v1"}, f.videos.appends)
}

func TestLogout_EndsSession(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))
	_, pair, err := f.accounts.Login(context.Background(), LoginInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, f.accounts.Logout(context.Background(), "u1"))
	_, _, err = f.tokens.Refresh(context.Background(), pair.Refresh.Token)
	require.True(t, apperror.IsKind(err, apperror.Authorization))
}

// guard against clock skew flakiness in CI: tokens issued here must expire
// in the future
func TestIssuedTokensCarryFutureExpiry(t *testing.T) {
	f := newAccountFixture(existingUser("u1", "alice"))
	_, pair, err := f.accounts.Login(context.Background(), LoginInput{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	require.True(t, pair.Access.Exp.After(time.Now()))
	require.True(t, pair.Refresh.Exp.After(pair.Access.Exp))
}

// A deployment without a broker passes a nil publisher; media updates
// must still go through, just without the cleanup event.
func TestUpdateAvatar_NilPublisherStillUpdates(t *testing.T) {
	store := newFakeUserStore(existingUser("u1", "alice"))
	media := &fakeUploader{url: "https://cdn.example.com"}
	tokens := NewTokenService(store, testTokenConfig())
	accounts := NewAccountService(store, &fakeVideoStore{}, media, tokens, testBcryptCost, nil)

	u, err := accounts.UpdateAvatar(context.Background(), "u1", asset("new-avatar.png"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/new-avatar.png", u.AvatarURL)
}
