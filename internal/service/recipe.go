package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService owns the recipe aggregate: the recipe row, its ingredient amounts and its tags.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// CreateRecipe validates and stores a recipe with its ingredients and tags in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error) {
	if err := validateCreateRecipe(req); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if _, err := loadTags(db, req.Tags); err != nil {
		return nil, err
	}
	if err := ensureIngredientsExist(db, req.Ingredients); err != nil {
		return nil, err
	}
	if err := ensureUniqueRecipeName(db, authorID, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	imageURL, err := storeImage(ctx, s.images, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       imageURL,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Tags", "Ingredients").Create(&recipe).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return errDuplicateRecipeName
			}
			return fmt.Errorf("creating recipe: %w", err)
		}
		return replaceRecipeRelations(tx, recipe.ID, &req.Ingredients, &req.Tags)
	})
	if err != nil {
		discardImage(ctx, s.images, imageURL)
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID, &authorID)
}

// UpdateRecipe applies the fields present in req. Ingredients and tags are replaced wholesale.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID uuid.UUID, requester types.Principal, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return nil, err
	}
	if !CanModifyRecipe(requester, recipe) {
		return nil, apperror.Forbidden("you can only modify your own recipes")
	}
	if err := validateUpdateRecipe(req); err != nil {
		return nil, err
	}
	if req.Tags != nil {
		if _, err := loadTags(db, *req.Tags); err != nil {
			return nil, err
		}
	}
	if req.Ingredients != nil {
		if err := ensureIngredientsExist(db, *req.Ingredients); err != nil {
			return nil, err
		}
	}
	if req.Name != nil && *req.Name != recipe.Name {
		if err := ensureUniqueRecipeName(db, recipe.AuthorID, *req.Name, recipe.ID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Text != nil {
		updates["text"] = *req.Text
	}
	if req.CookingTime != nil {
		updates["cooking_time"] = *req.CookingTime
	}
	var newImage string
	if req.Image != nil {
		if newImage, err = storeImage(ctx, s.images, *req.Image); err != nil {
			return nil, err
		}
		updates["image"] = newImage
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
				if database.IsUniqueViolation(err) {
					return errDuplicateRecipeName
				}
				return fmt.Errorf("updating recipe: %w", err)
			}
		}
		return replaceRecipeRelations(tx, recipe.ID, req.Ingredients, req.Tags)
	})
	if err != nil {
		discardImage(ctx, s.images, newImage)
		return nil, err
	}
	if newImage != "" {
		discardImage(ctx, s.images, recipe.Image)
	}

	return s.GetRecipe(ctx, recipe.ID, &requester.UserID)
}

// replaceRecipeRelations clears and re-inserts the collections that are non-nil.
func replaceRecipeRelations(tx *gorm.DB, recipeID uuid.UUID, ingredients *[]types.RecipeIngredientInput, tags *[]uint) error {
	if ingredients != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clearing recipe ingredients: %w", err)
		}
		rows := make([]models.RecipeIngredient, len(*ingredients))
		for i, item := range *ingredients {
			rows[i] = models.RecipeIngredient{RecipeID: recipeID, IngredientID: item.ID, Amount: item.Amount}
		}
		if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperror.ValidationFailed("ingredients", "ingredients must not repeat")
			}
			return fmt.Errorf("creating recipe ingredients: %w", err)
		}
	}
	if tags != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("clearing recipe tags: %w", err)
		}
		rows := make([]models.RecipeTag, len(*tags))
		for i, id := range *tags {
			rows[i] = models.RecipeTag{RecipeID: recipeID, TagID: id}
		}
		if err := tx.Create(&rows).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return apperror.ValidationFailed("tags", "tags must not repeat")
			}
			return fmt.Errorf("creating recipe tags: %w", err)
		}
	}
	return nil
}

// DeleteRecipe removes a recipe together with every favorite and cart entry that points at it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID uuid.UUID, requester types.Principal) error {
	db := s.db.WithContext(ctx)
	recipe, err := s.findRecipe(db, recipeID)
	if err != nil {
		return err
	}
	if !CanModifyRecipe(requester, recipe) {
		return apperror.Forbidden("you can only delete your own recipes")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Favorite{},
			&models.ShoppingCartEntry{},
			&models.RecipeTag{},
			&models.RecipeIngredient{},
		} {
			if err := tx.Where("recipe_id = ?", recipe.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("deleting recipe relations: %w", err)
			}
		}
		return tx.Delete(&models.Recipe{}, "id = ?", recipe.ID).Error
	})
	if err != nil {
		return err
	}

	discardImage(ctx, s.images, recipe.Image)
	return nil
}

// GetRecipe retrieves a recipe projected for viewer, which may be nil.
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	db := s.db.WithContext(ctx)
	var recipe models.Recipe
	err := preloadRecipe(db).First(&recipe, "recipes.id = ?", recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("recipe", recipeID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("loading recipe: %w", err)
	}
	out, err := buildRecipeResponses(db, []models.Recipe{recipe}, viewer)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListRecipes returns one page of recipes, newest first, and the total number of matches.
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter, viewer *uuid.UUID, page types.Pagination) ([]types.RecipeResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := applyRecipeFilter(db.Model(&models.Recipe{}), filter, viewer).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("counting recipes: %w", err)
	}

	var recipes []models.Recipe
	err := applyRecipeFilter(preloadRecipe(db), filter, viewer).
		Order("recipes.pub_date DESC, recipes.name, recipes.author_id").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing recipes: %w", err)
	}

	out, err := buildRecipeResponses(db, recipes, viewer)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

// applyRecipeFilter narrows a recipes query. The favorite and cart filters are ignored for anonymous viewers.
func applyRecipeFilter(q *gorm.DB, filter types.RecipeFilter, viewer *uuid.UUID) *gorm.DB {
	if len(filter.Tags) > 0 {
		slugs := make([]string, len(filter.Tags))
		for i, slug := range filter.Tags {
			slugs[i] = strings.ToLower(slug)
		}
		q = q.Where("recipes.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("LOWER(tags.slug) IN ?", slugs))
	}
	if filter.AuthorID != nil {
		q = q.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if viewer != nil && filter.IsFavorited {
		q = q.Where("recipes.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Model(&models.Favorite{}).
				Select("recipe_id").
				Where("user_id = ?", *viewer))
	}
	if viewer != nil && filter.IsInShoppingCart {
		q = q.Where("recipes.id IN (?)",
			q.Session(&gorm.Session{NewDB: true}).
				Model(&models.ShoppingCartEntry{}).
				Select("recipe_id").
				Where("user_id = ?", *viewer))
	}
	return q
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Recipe{}).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("recipe_ingredients.id")
		}).
		Preload("Ingredients.Ingredient")
}

func (s *RecipeService) findRecipe(db *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("recipe", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("loading recipe: %w", err)
	}
	return &recipe, nil
}
