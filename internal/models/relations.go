package models

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a recipe as favorited by a user.
type Favorite struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorite_user_recipe;index"`
	CreatedAt time.Time
}

// ShoppingCartEntry puts a recipe into a user's shopping cart.
type ShoppingCartEntry struct {
	ID        uint      `gorm:"primarykey"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_recipe;index"`
	CreatedAt time.Time
}

func (ShoppingCartEntry) TableName() string {
	return "shopping_cart_entries"
}

// Subscription means Follower receives recipes published by Following.
type Subscription struct {
	ID          uint      `gorm:"primarykey"`
	FollowerID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscription_pair"`
	FollowingID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_subscription_pair;index"`
	CreatedAt   time.Time
}

// All lists every persisted model in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},
		&Favorite{},
		&ShoppingCartEntry{},
		&Subscription{},
	}
}
