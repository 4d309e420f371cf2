package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

const (
	maxRecipeNameLength = 200
	maxRecipeTextLength = 1024
	minCookingTime      = 1
	minIngredientAmount = 1
)

func validateRecipeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperror.ValidationFailed("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxRecipeNameLength {
		return apperror.ValidationFailed("name", fmt.Sprintf("name must be at most %d characters", maxRecipeNameLength))
	}
	return nil
}

func validateRecipeText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ValidationFailed("text", "text is required")
	}
	if utf8.RuneCountInString(text) > maxRecipeTextLength {
		return apperror.ValidationFailed("text", fmt.Sprintf("text must be at most %d characters", maxRecipeTextLength))
	}
	return nil
}

func validateCookingTime(minutes int) error {
	if minutes < minCookingTime {
		return apperror.ValidationFailed("cooking_time", fmt.Sprintf("cooking time must be at least %d", minCookingTime))
	}
	return nil
}

// validateIngredients requires a non-empty list of distinct ingredients with positive amounts.
func validateIngredients(items []types.RecipeIngredientInput) error {
	if len(items) == 0 {
		return apperror.ValidationFailed("ingredients", "at least one ingredient is required")
	}
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ID == 0 {
			return apperror.ValidationFailed("ingredients", "ingredient id is required")
		}
		if item.Amount < minIngredientAmount {
			return apperror.ValidationFailed("ingredients", fmt.Sprintf("ingredient amount must be at least %d", minIngredientAmount))
		}
		if _, dup := seen[item.ID]; dup {
			return apperror.ValidationFailed("ingredients", "ingredients must not repeat")
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

// validateTags requires a non-empty list of distinct tag ids.
func validateTags(ids []uint) error {
	if len(ids) == 0 {
		return apperror.ValidationFailed("tags", "at least one tag is required")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return apperror.ValidationFailed("tags", "tags must not repeat")
		}
		seen[id] = struct{}{}
	}
	return nil
}

func validateCreateRecipe(req *types.CreateRecipeRequest) error {
	if err := validateIngredients(req.Ingredients); err != nil {
		return err
	}
	if err := validateTags(req.Tags); err != nil {
		return err
	}
	if err := validateRecipeName(req.Name); err != nil {
		return err
	}
	if err := validateRecipeText(req.Text); err != nil {
		return err
	}
	return validateCookingTime(req.CookingTime)
}

func validateUpdateRecipe(req *types.UpdateRecipeRequest) error {
	if req.Ingredients != nil {
		if err := validateIngredients(*req.Ingredients); err != nil {
			return err
		}
	}
	if req.Tags != nil {
		if err := validateTags(*req.Tags); err != nil {
			return err
		}
	}
	if req.Name != nil {
		if err := validateRecipeName(*req.Name); err != nil {
			return err
		}
	}
	if req.Text != nil {
		if err := validateRecipeText(*req.Text); err != nil {
			return err
		}
	}
	if req.CookingTime != nil {
		return validateCookingTime(*req.CookingTime)
	}
	return nil
}

// loadTags returns the tags for ids, failing when any id is unknown.
func loadTags(db *gorm.DB, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if err := db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("loading tags: %w", err)
	}
	if len(tags) == len(ids) {
		return tags, nil
	}
	found := make(map[uint]struct{}, len(tags))
	for _, t := range tags {
		found[t.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, apperror.ValidationFailed("tags", fmt.Sprintf("tag %d does not exist", id))
		}
	}
	return tags, nil
}

// ensureIngredientsExist fails when any referenced ingredient is unknown.
func ensureIngredientsExist(db *gorm.DB, items []types.RecipeIngredientInput) error {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	var existing []uint
	if err := db.Model(&models.Ingredient{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("loading ingredients: %w", err)
	}
	found := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return apperror.ValidationFailed("ingredients", fmt.Sprintf("ingredient %d does not exist", id))
		}
	}
	return nil
}

// ensureUniqueRecipeName rejects a second recipe with the same name by the same author.
// exclude is the recipe being updated, or uuid.Nil on create.
func ensureUniqueRecipeName(db *gorm.DB, authorID uuid.UUID, name string, exclude uuid.UUID) error {
	q := db.Model(&models.Recipe{}).Where("author_id = ? AND name = ?", authorID, name)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("checking recipe name: %w", err)
	}
	if count > 0 {
		return errDuplicateRecipeName
	}
	return nil
}

var errDuplicateRecipeName = apperror.ValidationFailed("name", "you already have a recipe with this name")

// CanModifyRecipe reports whether requester may change or delete recipe.
func CanModifyRecipe(requester types.Principal, recipe *models.Recipe) bool {
	return requester.IsAdmin || recipe.AuthorID == requester.UserID
}
