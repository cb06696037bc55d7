package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devanshk/tubestream/internal/service"
)

// ChannelHandler serves the aggregation reads: channel profile and watch
// history, plus the watch-history append.
type ChannelHandler struct {
	Channels *service.ChannelService
	Accounts *service.AccountService
}

func NewChannelHandler(channels *service.ChannelService, accounts *service.AccountService) *ChannelHandler {
	return &ChannelHandler{Channels: channels, Accounts: accounts}
}

// Profile: public read by username.  The session is optional; when one is
// present the isSubscribed flag reflects the caller.
func (h *ChannelHandler) Profile(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	profile, err := h.Channels.Profile(ctx, c.Param("username"), callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, profile, "channel profile fetched successfully")
}

// History: the caller's watch history, resolved and ordered.
func (h *ChannelHandler) History(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	history, err := h.Channels.History(ctx, callerID(c))
	if err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, history, "watch history fetched successfully")
}

// RecordWatch: append a video to the caller's history.
func (h *ChannelHandler) RecordWatch(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Accounts.RecordWatch(ctx, callerID(c), c.Param("videoId")); err != nil {
		return respondError(c, err)
	}
	return respond(c, http.StatusOK, nil, "watch recorded")
}
