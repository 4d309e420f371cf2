package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

func main() {
	down := flag.Bool("down", false, "Roll back the most recent migration")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat}))

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer database.Close(db)

	ctx := context.Background()
	if *down {
		err = database.RollbackMigration(ctx, db)
	} else {
		err = database.RunMigrations(ctx, db)
	}
	if err != nil {
		slog.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("migration finished", slog.Bool("down", *down))
}
