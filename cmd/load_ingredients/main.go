package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/loader"
	"github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	ingredientsFile := flag.String("file", "data/ingredients.csv", "CSV of (name, measurement_unit) rows")
	tagsFile := flag.String("tags", "", "optional CSV of (name, color, slug) rows")
	header := flag.Bool("header", true, "skip the first row of each file")
	flag.Parse()

	if err := run(*ingredientsFile, *tagsFile, *header); err != nil {
		slog.Error("import failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ingredientsFile, tagsFile string, header bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logger.Component(logger.NewSlog(logger.SlogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat}), "loader")

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db); err != nil {
		return err
	}

	f, err := os.Open(ingredientsFile)
	if err != nil {
		return fmt.Errorf("opening ingredients file: %w", err)
	}
	defer f.Close()
	ingredients, err := loader.ReadIngredients(f, header)
	if err != nil {
		return fmt.Errorf("reading %s: %w", ingredientsFile, err)
	}
	created, existing, err := service.NewIngredientService(db).Import(ctx, ingredients)
	if err != nil {
		return err
	}
	log.Info("ingredients imported",
		slog.String("file", ingredientsFile),
		slog.Int("created", created),
		slog.Int("existing", existing),
	)

	if tagsFile == "" {
		return nil
	}
	tf, err := os.Open(tagsFile)
	if err != nil {
		return fmt.Errorf("opening tags file: %w", err)
	}
	defer tf.Close()
	tags, err := loader.ReadTags(tf, header)
	if err != nil {
		return fmt.Errorf("reading %s: %w", tagsFile, err)
	}
	n, err := service.NewTagService(db).Import(ctx, tags)
	if err != nil {
		return err
	}
	log.Info("tags imported", slog.String("file", tagsFile), slog.Int("created", n), slog.Int("existing", len(tags)-n))
	return nil
}
