package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devanshk/tubestream/internal/apperror"
	"github.com/devanshk/tubestream/internal/middleware"
	"github.com/devanshk/tubestream/internal/service"
	"github.com/devanshk/tubestream/internal/uploader"
)

// UserHandler bundles dependencies for the account endpoints.
type UserHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
}

func NewUserHandler(accounts *service.AccountService, tokens *service.TokenService) *UserHandler {
	return &UserHandler{Accounts: accounts, Tokens: tokens}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken"`
}

type changePasswordReq struct {
	OldPassword string `json:"oldPassword" form:"oldPassword"`
	NewPassword string `json:"newPassword" form:"newPassword"`
}

type updateAccountReq struct {
	FullName string `json:"fullName" form:"fullName"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
}

type loginResp struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// formAsset opens an uploaded file field as an Asset.  A missing field
// yields (nil, noop, nil) so the required-or-fail decision stays with the
// workflow layer; callers must run the returned closer after the service
// call.
func formAsset(c echo.Context, field string) (*uploader.Asset, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// Absent field; the service decides whether that is fatal.
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &uploader.Asset{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

// Register: multipart form with the four text fields, a required avatar
// file and an optional coverImage file.  No session is established here;
// login is a separate step.
func (h *UserHandler) Register(c echo.Context) error {
	ctx, cancel := mediaCtx(c)
	defer cancel()

	avatar, closeAvatar, err := formAsset(c, "avatar")
	if err != nil {
		return respondError(c, apperror.NewInternal("failed to read avatar upload", err))
	}
	defer closeAvatar()
	cover, closeCover, err := formAsset(c, "coverImage")
	if err != nil {
		return respondError(c, apperror.NewInternal("failed to read cover upload", err))
	}
	defer closeCover()

	user, err := h.Accounts.Register(ctx, service.RegisterInput{
		FullName:   c.FormValue("fullName"),
		Username:   c.FormValue("username"),
		Email:      c.FormValue("email"),
		Password:   c.FormValue("password"),
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusCreated, user, "user registered successfully")
}

// Login: verify credentials, return the sanitized user plus both tokens
// and set the session cookies.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperror.NewValidation("invalid request body"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	user, pair, err := h.Accounts.Login(ctx, service.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	setSessionCookies(c, pair)
	return respond(c, http.StatusOK, loginResp{
		User:         user,
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
	}, "user logged in successfully")
}

// Logout: revoke the caller's refresh token and clear both cookies.
// Idempotent; logging out twice still succeeds.
func (h *UserHandler) Logout(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Accounts.Logout(ctx, callerID(c)); err != nil {
		return respondError(c, err)
	}
	clearSessionCookies(c)
	return respond(c, http.StatusOK, nil, "user logged out")
}

// Refresh: exchange the presented refresh token (cookie or body) for a new
// pair.  A token that no longer matches the stored value is rejected as
// replayed.
func (h *UserHandler) Refresh(c echo.Context) error {
	presented := ""
	if ck, err := c.Cookie(middleware.RefreshCookieName); err == nil {
		presented = ck.Value
	}
	if presented == "" {
		var req refreshReq
		_ = c.Bind(&req)
		presented = req.RefreshToken
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	user, pair, err := h.Tokens.Refresh(ctx, presented)
	if err != nil {
		return respondError(c, err)
	}
	setSessionCookies(c, pair)
	return respond(c, http.StatusOK, loginResp{
		User:         user.Sanitize(),
		AccessToken:  pair.Access.Token,
		RefreshToken: pair.Refresh.Token,
	}, "access token refreshed")
}

// ChangePassword: verify the old password and store the new hash.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperror.NewValidation("invalid request body"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Accounts.ChangePassword(ctx, callerID(c), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, nil, "password changed successfully")
}

// CurrentUser: return the caller's sanitized record.
func (h *UserHandler) CurrentUser(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	user, err := h.Accounts.CurrentUser(ctx, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, user, "current user fetched successfully")
}

// UpdateAccount: overwrite fullName, username and email.
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, apperror.NewValidation("invalid request body"))
	}
	ctx, cancel := dbCtx(c)
	defer cancel()

	user, err := h.Accounts.UpdateDetails(ctx, callerID(c), req.FullName, req.Username, req.Email)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, user, "account details updated successfully")
}

// UpdateAvatar: single-file upload replacing the avatar reference.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	return h.updateMedia(c, "avatar", func(ctx context.Context, userID string, a *uploader.Asset) (any, error) {
		return h.Accounts.UpdateAvatar(ctx, userID, a)
	}, "avatar updated successfully")
}

// UpdateCoverImage: single-file upload replacing the cover image reference.
func (h *UserHandler) UpdateCoverImage(c echo.Context) error {
	return h.updateMedia(c, "coverImage", func(ctx context.Context, userID string, a *uploader.Asset) (any, error) {
		return h.Accounts.UpdateCoverImage(ctx, userID, a)
	}, "cover image updated successfully")
}

func (h *UserHandler) updateMedia(c echo.Context, field string,
	apply func(context.Context, string, *uploader.Asset) (any, error), message string) error {
	ctx, cancel := mediaCtx(c)
	defer cancel()

	asset, closeAsset, err := formAsset(c, field)
	if err != nil {
		return respondError(c, apperror.NewInternal("failed to read upload", err))
	}
	defer closeAsset()

	user, err := apply(ctx, callerID(c), asset)
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, user, message)
}

// dbCtx bounds store-only operations.
func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// mediaCtx bounds operations that also hit the media store.
func mediaCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 60*time.Second)
}
