package database_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.True(t, database.IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, database.IsUniqueViolation(&pq.Error{Code: "23503"}))

	db := testhelpers.NewSQLiteDB(t)
	testhelpers.CreateTag(t, db, "lunch", models.ColorRed)
	err := db.Create(&models.Tag{Name: "lunch", Color: models.ColorBlue, Slug: "lunch-2"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
}

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "foodgram.db")}
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	ctx := context.Background()
	require.NoError(t, database.RunMigrations(ctx, db))
	require.NoError(t, database.HealthCheck(ctx, db))
	assert.True(t, db.Migrator().HasTable(&models.RecipeTag{}))
	assert.Error(t, database.RollbackMigration(ctx, db))
}

func TestPostgresMigrations(t *testing.T) {
	db := testhelpers.NewPostgresDB(t)
	ctx := context.Background()

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}

	// the recipe constraints live in the SQL schema
	author := testhelpers.CreateUser(t, db, "author")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", nil)
	dup := models.Recipe{AuthorID: author.ID, Name: "Soup", Text: "again", CookingTime: 1, Image: "x"}
	err := db.Omit("Author", "Tags", "Ingredients").Create(&dup).Error
	assert.True(t, database.IsUniqueViolation(err), "got %v", err)

	fav := models.Favorite{UserID: author.ID, RecipeID: recipe.ID}
	require.NoError(t, db.Create(&fav).Error)
	require.NoError(t, db.Delete(recipe).Error)
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, database.RunMigrations(ctx, db), "re-running migrations is a no-op")
	require.NoError(t, database.RollbackMigration(ctx, db))
	assert.False(t, db.Migrator().HasTable(&models.Recipe{}))
}
