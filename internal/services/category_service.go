package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CategoryService provides methods to interact with categories
type CategoryService interface {
	// GetAllCategories retrieves all categories ordered by name
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	// GetCategoryByID retrieves a category by its ID
	GetCategoryByID(ctx context.Context, id uint) (models.Category, error)
	// CreateCategory creates a new category
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	// UpdateCategory renames an existing category
	UpdateCategory(ctx context.Context, id uint, name string) (models.Category, error)
	// DeleteCategory deletes a category that has no recipes
	DeleteCategory(ctx context.Context, id uint) (models.Category, error)
}

type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(db *gorm.DB) CategoryService {
	return &categoryService{db: db}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	db := s.db.WithContext(ctx)

	var categories []models.Category
	if err := db.Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	refs := make([]*models.Category, len(categories))
	for i := range categories {
		refs[i] = &categories[i]
	}
	if err := attachCategoryRecipes(db, refs); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id uint) (models.Category, error) {
	return findCategory(s.db.WithContext(ctx), id)
}

func (s *categoryService) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, NewValidationError("name", "the name field is required")
	}

	category := models.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return models.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	category.Recipes = []models.RecipeSummary{}

	log.WithField("category_id", category.ID).Info("Category created")
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, NewValidationError("name", "the name field is required")
	}

	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			return err
		}
		category.Name = name
		return tx.Save(&category).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to update category: %w", err)
	}

	log.WithField("category_id", id).Info("Category updated")
	return s.GetCategoryByID(ctx, id)
}

// DeleteCategory refuses to delete categories that still have recipes
func (s *categoryService) DeleteCategory(ctx context.Context, id uint) (models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findCategory(tx, id)
		if err != nil {
			return err
		}
		if len(found.Recipes) > 0 {
			return ErrCategoryInUse
		}
		category = found
		return tx.Delete(&models.Category{}, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrCategoryInUse) {
			return models.Category{}, err
		}
		return models.Category{}, fmt.Errorf("failed to delete category: %w", err)
	}

	log.WithField("category_id", id).Info("Category deleted")
	return category, nil
}

func findCategory(db *gorm.DB, id uint) (models.Category, error) {
	var category models.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, ErrCategoryNotFound
		}
		return models.Category{}, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	if err := attachCategoryRecipes(db, []*models.Category{&category}); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// attachCategoryRecipes fills the derived Recipes field of every category
// with one query over all the given category IDs.
func attachCategoryRecipes(db *gorm.DB, categories []*models.Category) error {
	if len(categories) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(categories))
	seen := make(map[uint]bool, len(categories))
	for _, category := range categories {
		if !seen[category.ID] {
			seen[category.ID] = true
			ids = append(ids, category.ID)
		}
	}

	var summaries []models.RecipeSummary
	err := db.Model(&models.Recipe{}).
		Select("id", "title", "category_id").
		Where("category_id IN ?", ids).
		Order("id ASC").
		Find(&summaries).Error
	if err != nil {
		return fmt.Errorf("failed to load category recipes: %w", err)
	}

	byCategory := make(map[uint][]models.RecipeSummary, len(ids))
	for _, summary := range summaries {
		byCategory[summary.CategoryID] = append(byCategory[summary.CategoryID], summary)
	}
	for _, category := range categories {
		recipes := byCategory[category.ID]
		if recipes == nil {
			recipes = []models.RecipeSummary{}
		}
		category.Recipes = recipes
	}
	return nil
}
