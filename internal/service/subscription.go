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

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes follower follow following. recipesLimit caps the recipe preview; 0 means no cap.
func (s *SubscriptionService) Subscribe(ctx context.Context, followerID, followingID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if followerID == followingID {
		return nil, apperror.ValidationFailed("user", "you cannot subscribe to yourself")
	}
	db := s.db.WithContext(ctx)
	author, err := findUser(db, followingID)
	if err != nil {
		return nil, err
	}

	var count int64
	err = db.Model(&models.Subscription{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("checking subscription: %w", err)
	}
	if count > 0 {
		return nil, errAlreadySubscribed
	}
	sub := models.Subscription{FollowerID: followerID, FollowingID: followingID}
	if err := db.Create(&sub).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errAlreadySubscribed
		}
		return nil, fmt.Errorf("creating subscription: %w", err)
	}

	out, err := buildSubscriptions(db, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

var errAlreadySubscribed = apperror.Conflict("you are already subscribed to this user")

// Unsubscribe removes an existing subscription.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, followerID, followingID uuid.UUID) error {
	db := s.db.WithContext(ctx)
	if _, err := findUser(db, followingID); err != nil {
		return err
	}
	res := db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Subscription{})
	if res.Error != nil {
		return fmt.Errorf("deleting subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &apperror.AppError{Err: apperror.ErrNotFound, Message: "you are not subscribed to this user"}
	}
	return nil
}

// ListSubscriptions returns the authors followerID follows, ordered by username.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, followerID uuid.UUID, page types.Pagination, recipesLimit int) ([]types.SubscriptionResponse, int64, error) {
	db := s.db.WithContext(ctx)
	followed := func() *gorm.DB {
		return db.Model(&models.User{}).
			Joins("JOIN subscriptions ON subscriptions.following_id = users.id").
			Where("subscriptions.follower_id = ?", followerID)
	}

	var count int64
	if err := followed().Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("counting subscriptions: %w", err)
	}
	var authors []models.User
	err := followed().
		Order("users.username").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&authors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing subscriptions: %w", err)
	}

	out, err := buildSubscriptions(db, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

// buildSubscriptions projects followed authors with their newest recipes.
func buildSubscriptions(db *gorm.DB, authors []models.User, recipesLimit int) ([]types.SubscriptionResponse, error) {
	out := make([]types.SubscriptionResponse, len(authors))
	for i := range authors {
		author := &authors[i]
		var count int64
		if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("counting recipes: %w", err)
		}
		q := db.Where("author_id = ?", author.ID).Order("pub_date DESC, name")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("loading recipes: %w", err)
		}

		summaries := make([]types.RecipeSummary, len(recipes))
		for j := range recipes {
			summaries[j] = types.NewRecipeSummary(&recipes[j])
		}
		out[i] = types.SubscriptionResponse{
			UserResponse: types.NewUserResponse(author, true),
			Recipes:      summaries,
			RecipesCount: count,
		}
	}
	return out, nil
}

func findUser(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return &user, nil
}
