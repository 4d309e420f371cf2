package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

var testUsers = []struct {
	firstName string
	lastName  string
	username  string
	admin     bool
}{
	{"John", "Doe", "johndoe", false},
	{"Jane", "Smith", "janesmith", false},
	{"Bob", "Wilson", "bobwilson", false},
	{"Admin", "User", "admin", true},
}

func main() {
	password := flag.String("password", "testpassword123", "password shared by every test user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.Component(logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat}), "seed")

	db, err := database.New(cfg)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db); err != nil {
		log.Error("failed to migrate", slog.Any("error", err))
		os.Exit(1)
	}

	users := service.NewUserService(db)
	for _, u := range testUsers {
		user, err := users.Register(ctx, &types.RegisterRequest{
			Email:     u.username + "@example.com",
			Username:  u.username,
			FirstName: u.firstName,
			LastName:  u.lastName,
			Password:  *password,
		})
		if errors.Is(err, apperror.ErrConflict) {
			log.Info("user already exists, skipping", slog.String("username", u.username))
			continue
		}
		if err != nil {
			log.Error("failed to create user", slog.String("username", u.username), slog.Any("error", err))
			continue
		}
		if u.admin {
			if err := db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_admin", true).Error; err != nil {
				log.Error("failed to grant admin", slog.String("username", u.username), slog.Any("error", err))
				continue
			}
		}
		log.Info("created user", slog.String("email", user.Email), slog.Bool("admin", u.admin))
	}
}
