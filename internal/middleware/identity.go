package middleware

// identity.go provides the caller-identity helper shared by the rate-limit
// and cache key builders.  The JWT middleware stores the authenticated
// subject under "user_id"; anonymous requests resolve to "anon".

import "github.com/labstack/echo/v4"

// CurrentUserID returns the authenticated user id from the context, or
// "anon" when the request carries no valid session.
func CurrentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
