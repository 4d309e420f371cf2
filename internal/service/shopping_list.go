package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ErrEmptyShoppingCart is returned when there is nothing to aggregate.
var ErrEmptyShoppingCart = &apperror.AppError{Err: apperror.ErrNotFound, Message: "shopping cart is empty"}

type ShoppingListService struct {
	db       *gorm.DB
	renderer DocumentRenderer
}

func NewShoppingListService(db *gorm.DB, renderer DocumentRenderer) *ShoppingListService {
	return &ShoppingListService{db: db, renderer: renderer}
}

// Aggregate sums ingredient amounts over every recipe in the user's cart.
// Rows are keyed by (name, measurement unit) and ordered by name then unit.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.ShoppingCartEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("counting shopping cart: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptyShoppingCart
	}

	var items []types.ShoppingListItem
	err := db.Table("recipe_ingredients AS ri").
		Select("i.name AS name, i.measurement_unit AS measurement_unit, SUM(ri.amount) AS total_amount").
		Joins("JOIN ingredients AS i ON i.id = ri.ingredient_id").
		Joins("JOIN shopping_cart_entries AS sc ON sc.recipe_id = ri.recipe_id").
		Where("sc.user_id = ?", userID).
		Group("i.name, i.measurement_unit").
		Order("i.name, i.measurement_unit").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating shopping list: %w", err)
	}
	return items, nil
}

// Export renders the aggregated shopping list as a downloadable document.
func (s *ShoppingListService) Export(ctx context.Context, userID uuid.UUID) (*Document, error) {
	items, err := s.Aggregate(ctx, userID)
	if err != nil {
		return nil, err
	}
	content, err := s.renderer.Render(items)
	if err != nil {
		return nil, fmt.Errorf("rendering shopping list: %w", err)
	}
	return &Document{
		Content:     content,
		ContentType: s.renderer.ContentType(),
		FileName:    s.renderer.FileName(),
	}, nil
}
