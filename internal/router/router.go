// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/devanshk/tubestream/internal/config"
	"github.com/devanshk/tubestream/internal/handler"
	"github.com/devanshk/tubestream/internal/middleware"
)

// RegisterRoutes registers routes that need no dependencies.  Currently it
// exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUsers wires the account, session and channel endpoints under
// /api/v1/users.  accessSecret verifies access tokens on protected and
// optional-auth routes; rdb powers the rate limiter on the credential
// endpoints and the response cache on the channel profile (nil disables
// both).
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, ch *handler.ChannelHandler,
	accessSecret string, rdb *redis.Client) {

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/api/v1/users")

	// Credential-bearing endpoints get the token bucket: the three worth
	// hammering with guesses.
	g.POST("/register", u.Register, limiter)
	g.POST("/login", u.Login, limiter)
	g.POST("/refresh-token", u.Refresh, limiter)

	// Protected endpoints require a valid access token.
	auth := g.Group("", middleware.JWTAuth(accessSecret))
	auth.POST("/logout", u.Logout)
	auth.POST("/change-password", u.ChangePassword)
	auth.GET("/current-user", u.CurrentUser)
	auth.PATCH("/update-account", u.UpdateAccount)
	auth.PATCH("/avatar", u.UpdateAvatar)
	auth.PATCH("/cover-image", u.UpdateCoverImage)
	auth.GET("/history", ch.History)
	auth.POST("/history/:videoId", ch.RecordWatch)

	// Public read with optional session: isSubscribed depends on the
	// caller when one is present.  The cache key includes the caller
	// identity, so the optional auth middleware must run before the cache.
	g.GET("/c/:username", ch.Profile, middleware.OptionalJWTAuth(accessSecret), cache)
}
