package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeListService toggles membership of a recipe in a per-user list.
// Favorites and the shopping cart share this behavior and differ only in storage.
type RecipeListService struct {
	db       *gorm.DB
	model    func() interface{}
	newEntry func(userID, recipeID uuid.UUID) interface{}
	label    string
}

// NewFavoriteService creates the favorites list.
func NewFavoriteService(db *gorm.DB) *RecipeListService {
	return &RecipeListService{
		db:    db,
		model: func() interface{} { return &models.Favorite{} },
		newEntry: func(userID, recipeID uuid.UUID) interface{} {
			return &models.Favorite{UserID: userID, RecipeID: recipeID}
		},
		label: "favorites",
	}
}

// NewShoppingCartService creates the shopping cart list.
func NewShoppingCartService(db *gorm.DB) *RecipeListService {
	return &RecipeListService{
		db:    db,
		model: func() interface{} { return &models.ShoppingCartEntry{} },
		newEntry: func(userID, recipeID uuid.UUID) interface{} {
			return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
		},
		label: "the shopping cart",
	}
}

// Add puts the recipe in the user's list. Adding twice is a conflict.
func (s *RecipeListService) Add(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	err := db.First(&recipe, "id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("recipe", recipeID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("loading recipe: %w", err)
	}

	exists, err := s.contains(db, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.alreadyPresent()
	}
	if err := db.Create(s.newEntry(userID, recipeID)).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, s.alreadyPresent()
		}
		return nil, fmt.Errorf("adding recipe to %s: %w", s.label, err)
	}

	summary := types.NewRecipeSummary(&recipe)
	return &summary, nil
}

// Remove takes the recipe out of the user's list.
func (s *RecipeListService) Remove(ctx context.Context, userID, recipeID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return fmt.Errorf("loading recipe: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("recipe", recipeID.String())
	}

	res := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(s.model())
	if res.Error != nil {
		return fmt.Errorf("removing recipe from %s: %w", s.label, res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: fmt.Sprintf("recipe is not in %s", s.label),
		}
	}
	return nil
}

// Contains reports whether the recipe is in the user's list.
func (s *RecipeListService) Contains(ctx context.Context, userID, recipeID uuid.UUID) (bool, error) {
	return s.contains(s.db.WithContext(ctx), userID, recipeID)
}

func (s *RecipeListService) contains(db *gorm.DB, userID, recipeID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(s.model()).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", s.label, err)
	}
	return count > 0, nil
}

func (s *RecipeListService) alreadyPresent() error {
	return apperror.Conflict(fmt.Sprintf("recipe is already in %s", s.label))
}
