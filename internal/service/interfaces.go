package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// IUserService defines the interface for user account operations
type IUserService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.UserResponse, error)
	ListUsers(ctx context.Context, viewer *uuid.UUID, page types.Pagination) ([]types.UserResponse, int64, error)
	SetPassword(ctx context.Context, userID uuid.UUID, req *types.SetPasswordRequest) error
}

// ISubscriptionService defines the interface for following authors
type ISubscriptionService interface {
	Subscribe(ctx context.Context, followerID, followingID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, followerID, followingID uuid.UUID) error
	ListSubscriptions(ctx context.Context, followerID uuid.UUID, page types.Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*types.RecipeResponse, error)
	UpdateRecipe(ctx context.Context, recipeID uuid.UUID, requester types.Principal, req *types.UpdateRecipeRequest) (*types.RecipeResponse, error)
	DeleteRecipe(ctx context.Context, recipeID uuid.UUID, requester types.Principal) error
	GetRecipe(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error)
	ListRecipes(ctx context.Context, filter types.RecipeFilter, viewer *uuid.UUID, page types.Pagination) ([]types.RecipeResponse, int64, error)
}

// IRecipeListService is a per-user recipe collection such as favorites or the shopping cart.
type IRecipeListService interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error)
	Remove(ctx context.Context, userID, recipeID uuid.UUID) error
}

// IShoppingListService aggregates and renders a user's shopping cart
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uuid.UUID) ([]types.ShoppingListItem, error)
	Export(ctx context.Context, userID uuid.UUID) (*Document, error)
}

// ITagService defines read access to tags
type ITagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
}

// IIngredientService defines read access to ingredients
type IIngredientService interface {
	SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
}

// ImageStore persists recipe images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// TokenRevoker remembers logged-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// DocumentRenderer turns aggregated shopping list rows into a downloadable file.
type DocumentRenderer interface {
	Render(items []types.ShoppingListItem) ([]byte, error)
	ContentType() string
	FileName() string
}

// Document is a rendered file ready to be sent to the client.
type Document struct {
	Content     []byte
	ContentType string
	FileName    string
}
