package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/devanshk/tubestream/internal/config"
	"github.com/devanshk/tubestream/internal/database"
	"github.com/devanshk/tubestream/internal/handler"
	"github.com/devanshk/tubestream/internal/queue"
	"github.com/devanshk/tubestream/internal/repository"
	"github.com/devanshk/tubestream/internal/router"
	"github.com/devanshk/tubestream/internal/service"
	"github.com/devanshk/tubestream/internal/uploader"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(database.Settings{
		User:            cfg.DBUser,
		Pass:            cfg.DBPass,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	media, err := uploader.NewS3Uploader(context.Background(), uploader.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
		Timeout:       cfg.UploadTimeout,
	})
	if err != nil {
		log.Fatalf("uploader: %v", err)
	}

	users := repository.NewUserRepo(db)
	subs := repository.NewSubscriptionRepo(db)
	videos := repository.NewVideoRepo(db)

	tokens := service.NewTokenService(users, service.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTTL(),
		RefreshTTL:    cfg.RefreshTTL(),
	})
	var publish service.MediaEventPublisher
	if cfg.AMQPURL != "" {
		publish = queue.NewMediaReplacedPublisher(cfg.AMQPURL)
		// Deletes superseded avatars/covers from the media store.
		go queue.StartMediaCleanupConsumer(cfg.AMQPURL, media, cfg.S3PublicBaseURL)
	} else {
		log.Printf("broker not configured; media cleanup events disabled")
	}
	accounts := service.NewAccountService(users, videos, media, tokens,
		cfg.BcryptCost, publish)
	channels := service.NewChannelService(users, subs, videos)

	rdb := config.NewRedisClient() // nil disables rate limiting and caching
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and profile cache disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterUsers(e,
		handler.NewUserHandler(accounts, tokens),
		handler.NewChannelHandler(channels, accounts),
		cfg.AccessTokenSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
