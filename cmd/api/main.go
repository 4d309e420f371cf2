package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/render"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL is not set: rate limiting is disabled and token revocation is kept in memory")
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	var revoker service.TokenRevoker = service.NewMemoryTokenRevoker()
	opts := api.Options{PageSize: cfg.PageSize, MaxPageSize: cfg.MaxPageSize}
	if redisClient != nil {
		revoker = service.NewRedisTokenRevoker(redisClient)
		opts.CreateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit)
		opts.ModifyLimiter = middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RecipeModifyLimit)
	}

	srv := server.New(cfg, server.Deps{
		DB: db,
		Services: api.Services{
			Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.JWTTTL, revoker),
			Users:         service.NewUserService(db),
			Subscriptions: service.NewSubscriptionService(db),
			Recipes:       service.NewRecipeService(db, images),
			Favorites:     service.NewFavoriteService(db),
			ShoppingCart:  service.NewShoppingCartService(db),
			ShoppingList:  service.NewShoppingListService(db, render.NewPDFRenderer(cfg.PDFFontPath)),
			Tags:          service.NewTagService(db),
			Ingredients:   service.NewIngredientService(db),
		},
		Options: opts,
		Logger:  log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down server")
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	if cfg.ImageStorage != "s3" {
		return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
	}
	s3Config, err := config.NewS3Config(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	if err := s3Config.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return service.NewS3ImageStore(s3Config), nil
}
