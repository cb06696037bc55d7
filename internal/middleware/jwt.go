// Package middleware provides the access-token guards and the Redis-backed
// rate limiting and response caching applied by the router.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/devanshk/tubestream/internal/utils"
)

// AccessCookieName is the cookie carrying the access token; the refresh
// cookie lives next to it.  Both are set by the auth handlers.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// tokenFromRequest pulls the access token from the Authorization header or,
// failing that, from the accessToken cookie.
func tokenFromRequest(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie(AccessCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}

// JWTAuth returns an Echo middleware that requires a valid access token and
// injects the token's subject into the request context under "user_id".
// The provided secret must match the one used when issuing access tokens.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"statusCode": http.StatusUnauthorized,
					"message":    "unauthorized request",
					"success":    false,
				})
			}
			userID, err := utils.VerifyToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"statusCode": http.StatusUnauthorized,
					"message":    "invalid access token",
					"success":    false,
				})
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}

// OptionalJWTAuth is the lenient variant used by public reads whose
// response depends on the caller when one is present (the channel
// profile's isSubscribed flag).  A missing or invalid token passes
// through as an anonymous request instead of failing.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw := tokenFromRequest(c); raw != "" {
				if userID, err := utils.VerifyToken(secret, raw); err == nil {
					c.Set("user_id", userID)
				}
			}
			return next(c)
		}
	}
}
