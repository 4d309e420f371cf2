package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/apperror"
	"github.com/pageza/foodgram/backend/internal/models"
)

// TagService serves the fixed tag catalogue.
type TagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{db: db}
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("tag", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, fmt.Errorf("loading tag: %w", err)
	}
	return &tag, nil
}

// Import inserts tags whose slug is not present yet and returns how many were created.
func (s *TagService) Import(ctx context.Context, tags []models.Tag) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tags {
			tag := tags[i]
			if tag.Color == "" {
				tag.Color = models.DefaultTagColor
			}
			if !models.IsTagColor(tag.Color) {
				return apperror.ValidationFailed("color", fmt.Sprintf("unknown tag color %q", tag.Color))
			}
			var count int64
			if err := tx.Model(&models.Tag{}).Where("slug = ?", tag.Slug).Count(&count).Error; err != nil {
				return fmt.Errorf("checking tag %s: %w", tag.Slug, err)
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&tag).Error; err != nil {
				return fmt.Errorf("importing tag %s: %w", tag.Slug, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// IngredientService serves the ingredient catalogue.
type IngredientService struct {
	db *gorm.DB
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchIngredients lists ingredients whose name starts with namePrefix, case-insensitively.
func (s *IngredientService) SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	q := s.db.WithContext(ctx).Order("name, measurement_unit")
	if prefix := strings.TrimSpace(namePrefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeEscaper.Replace(strings.ToLower(prefix))+"%")
	}
	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("searching ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *IngredientService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := s.db.WithContext(ctx).First(&ingredient, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("ingredient", strconv.FormatUint(uint64(id), 10))
	}
	if err != nil {
		return nil, fmt.Errorf("loading ingredient: %w", err)
	}
	return &ingredient, nil
}

// Import inserts ingredients not yet present. Existing (name, unit) pairs are skipped.
func (s *IngredientService) Import(ctx context.Context, ingredients []models.Ingredient) (created, existing int, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range ingredients {
			ingredient := ingredients[i]
			var count int64
			err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND measurement_unit = ?", ingredient.Name, ingredient.MeasurementUnit).
				Count(&count).Error
			if err != nil {
				return fmt.Errorf("checking ingredient %s: %w", ingredient.Name, err)
			}
			if count > 0 {
				existing++
				continue
			}
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("importing ingredient %s: %w", ingredient.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, existing, nil
}
