package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

type UserService struct {
	db         *gorm.DB
	bcryptCost int
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost, mainly so tests can use bcrypt.MinCost.
func (s *UserService) WithBcryptCost(cost int) *UserService {
	s.bcryptCost = cost
	return s
}

// Register creates an account. Email and username must be unused.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "a user with this email already exists", Field: "email"}
	}
	if err := db.Model(&models.User{}).Where("username = ?", req.Username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if count > 0 {
		return nil, &apperror.AppError{Err: apperror.ErrConflict, Message: "a user with this username already exists", Field: "username"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("a user with this email or username already exists")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return &user, nil
}

// GetUser returns a user as seen by viewer, which may be nil.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.UserResponse, error) {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, id)
	if err != nil {
		return nil, err
	}
	subscribed, err := subscribedSet(db, viewer, []uuid.UUID{user.ID})
	if err != nil {
		return nil, err
	}
	out := types.NewUserResponse(user, subscribed.has(user.ID))
	return &out, nil
}

// ListUsers returns one page of users ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewer *uuid.UUID, page types.Pagination) ([]types.UserResponse, int64, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}
	var users []models.User
	if err := db.Order("username").Limit(page.Limit).Offset(page.Offset()).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedSet(db, viewer, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]types.UserResponse, len(users))
	for i := range users {
		out[i] = types.NewUserResponse(&users[i], subscribed.has(users[i].ID))
	}
	return out, count, nil
}

// SetPassword changes the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uuid.UUID, req *types.SetPasswordRequest) error {
	db := s.db.WithContext(ctx)
	user, err := findUser(db, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.ValidationFailed("current_password", "current password is incorrect")
		}
		return fmt.Errorf("checking password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error
}
