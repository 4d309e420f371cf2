package service

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type idSet map[uuid.UUID]struct{}

func (s idSet) has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func pluckSet(q *gorm.DB, column string) (idSet, error) {
	var ids []uuid.UUID
	if err := q.Pluck(column, &ids).Error; err != nil {
		return nil, err
	}
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// subscribedSet returns which of authorIDs the viewer follows. Anonymous viewers follow nobody.
func subscribedSet(db *gorm.DB, viewer *uuid.UUID, authorIDs []uuid.UUID) (idSet, error) {
	if viewer == nil || len(authorIDs) == 0 {
		return idSet{}, nil
	}
	q := db.Model(&models.Subscription{}).
		Where("follower_id = ? AND following_id IN ?", *viewer, authorIDs)
	set, err := pluckSet(q, "following_id")
	if err != nil {
		return nil, fmt.Errorf("loading subscriptions: %w", err)
	}
	return set, nil
}

func recipeMembership(db *gorm.DB, model interface{}, viewer uuid.UUID, recipeIDs []uuid.UUID) (idSet, error) {
	q := db.Model(model).Where("user_id = ? AND recipe_id IN ?", viewer, recipeIDs)
	return pluckSet(q, "recipe_id")
}

// buildRecipeResponses projects recipes for a viewer with one query per relation.
// Recipes must have Author, Tags and Ingredients.Ingredient preloaded.
func buildRecipeResponses(db *gorm.DB, recipes []models.Recipe, viewer *uuid.UUID) ([]types.RecipeResponse, error) {
	favorites, cart, subscribed := idSet{}, idSet{}, idSet{}
	if viewer != nil && len(recipes) > 0 {
		recipeIDs := make([]uuid.UUID, len(recipes))
		authorIDs := make([]uuid.UUID, len(recipes))
		for i := range recipes {
			recipeIDs[i] = recipes[i].ID
			authorIDs[i] = recipes[i].AuthorID
		}

		var err error
		if favorites, err = recipeMembership(db, &models.Favorite{}, *viewer, recipeIDs); err != nil {
			return nil, fmt.Errorf("loading favorites: %w", err)
		}
		if cart, err = recipeMembership(db, &models.ShoppingCartEntry{}, *viewer, recipeIDs); err != nil {
			return nil, fmt.Errorf("loading shopping cart: %w", err)
		}
		if subscribed, err = subscribedSet(db, viewer, authorIDs); err != nil {
			return nil, err
		}
	}

	out := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		out[i] = types.RecipeResponse{
			ID:               r.ID,
			Tags:             sortedTags(r.Tags),
			Author:           types.NewUserResponse(&r.Author, subscribed.has(r.AuthorID)),
			Ingredients:      ingredientResponses(r.Ingredients),
			IsFavorited:      favorites.has(r.ID),
			IsInShoppingCart: cart.has(r.ID),
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return out, nil
}

func sortedTags(tags []models.Tag) []models.Tag {
	out := make([]models.Tag, len(tags))
	copy(out, tags)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func ingredientResponses(items []models.RecipeIngredient) []types.RecipeIngredientResponse {
	out := make([]types.RecipeIngredientResponse, len(items))
	for i, item := range items {
		out[i] = types.RecipeIngredientResponse{
			ID:              item.IngredientID,
			Name:            item.Ingredient.Name,
			MeasurementUnit: item.Ingredient.MeasurementUnit,
			Amount:          item.Amount,
		}
	}
	return out
}
