// Package handler exposes the HTTP surface: account workflows, session
// exchange and the channel/history reads, all speaking one response
// envelope.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devanshk/tubestream/internal/apperror"
	"github.com/devanshk/tubestream/internal/middleware"
	"github.com/devanshk/tubestream/internal/service"
)

// envelope is the uniform success payload: {statusCode, data, message,
// success:true}.  Failures use the same shape without data.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// respondError maps any service error onto the failure envelope.  Non
// AppError causes collapse into a 500 so raw driver messages never reach
// clients.
func respondError(c echo.Context, err error) error {
	ae := apperror.From(err)
	return c.JSON(ae.StatusCode(), envelope{
		StatusCode: ae.StatusCode(),
		Message:    ae.Message,
		Success:    false,
	})
}

// setSessionCookies attaches the access/refresh pair as HttpOnly, Secure
// cookies.
func setSessionCookies(c echo.Context, pair service.TokenPair) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.AccessCookieName,
		Value:    pair.Access.Token,
		Expires:  pair.Access.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
	c.SetCookie(&http.Cookie{
		Name:     middleware.RefreshCookieName,
		Value:    pair.Refresh.Token,
		Expires:  pair.Refresh.Exp,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
	})
}

// clearSessionCookies expires both session cookies.
func clearSessionCookies(c echo.Context) {
	for _, name := range []string{middleware.AccessCookieName, middleware.RefreshCookieName} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
		})
	}
}

// callerID returns the authenticated user id injected by the JWT
// middleware, or "" for anonymous requests on optional-auth routes.
func callerID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}
