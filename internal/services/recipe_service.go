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

const (
	// DefaultPerPage is the page size used when the client does not ask for one
	DefaultPerPage = 10
	// MaxPerPage caps the page size a client may request
	MaxPerPage = 100
)

// ListRecipesParams holds the search and pagination options for listing recipes
type ListRecipesParams struct {
	Search  string
	Page    int
	PerPage int
}

// normalize applies the pagination defaults and bounds
func (p ListRecipesParams) normalize() ListRecipesParams {
	p.Search = strings.TrimSpace(p.Search)
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// RecipeInput holds the fields of a recipe to create.
// Ingredients must already be normalized.
type RecipeInput struct {
	Title       string
	Body        string
	CategoryID  uint
	Ingredients string
	Image       ImageInput
}

// RecipeUpdate holds the fields of a recipe update. Nil fields are left unchanged.
type RecipeUpdate struct {
	Title       string
	Body        string
	CategoryID  *uint
	Ingredients *string
	Image       ImageInput
}

// RecipeService provides methods to interact with recipes and their images
type RecipeService interface {
	// GetAllRecipes retrieves a page of recipes, newest first, optionally filtered by title
	GetAllRecipes(ctx context.Context, params ListRecipesParams) (models.Page[models.Recipe], error)
	// GetRecipeByID retrieves a recipe by its ID
	GetRecipeByID(ctx context.Context, id uint) (models.Recipe, error)
	// CreateRecipe resolves the image and persists a new recipe
	CreateRecipe(ctx context.Context, input RecipeInput) (models.Recipe, error)
	// UpdateRecipe applies an update to an existing recipe
	UpdateRecipe(ctx context.Context, id uint, update RecipeUpdate) (models.Recipe, error)
	// DeleteRecipe deletes a recipe and returns the deleted row
	DeleteRecipe(ctx context.Context, id uint) (models.Recipe, error)
}

// recipeService is the implementation of the RecipeService interface
type recipeService struct {
	db     *gorm.DB
	images ImageService
}

// NewRecipeService creates a new instance of RecipeService
func NewRecipeService(db *gorm.DB, images ImageService) RecipeService {
	return &recipeService{db: db, images: images}
}

func (s *recipeService) GetAllRecipes(ctx context.Context, params ListRecipesParams) (models.Page[models.Recipe], error) {
	params = params.normalize()

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Recipe{})
		if params.Search != "" {
			query = query.Where("title LIKE ?", "%"+params.Search+"%")
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return models.Page[models.Recipe]{}, fmt.Errorf("failed to count recipes: %w", err)
	}

	var recipes []models.Recipe
	err := filtered().
		Preload("Category").
		Order("created_at DESC").
		Order("id DESC").
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&recipes).Error
	if err != nil {
		return models.Page[models.Recipe]{}, fmt.Errorf("failed to list recipes: %w", err)
	}

	if err := attachCategoryRecipes(s.db.WithContext(ctx), recipeCategories(recipes)); err != nil {
		return models.Page[models.Recipe]{}, err
	}

	return models.NewPage(recipes, total, params.Page, params.PerPage), nil
}

func (s *recipeService) GetRecipeByID(ctx context.Context, id uint) (models.Recipe, error) {
	return s.findRecipe(s.db.WithContext(ctx), id)
}

func (s *recipeService) CreateRecipe(ctx context.Context, input RecipeInput) (models.Recipe, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Body = strings.TrimSpace(input.Body)

	validation := &ValidationError{}
	if input.Title == "" {
		validation.Add("title", "the title field is required")
	}
	if input.Body == "" {
		validation.Add("body", "the body field is required")
	}
	if input.Ingredients == "" {
		validation.Add("ingredients", "the ingredients field is required")
	}
	if input.CategoryID == 0 {
		validation.Add("category_id", "the category_id field is required")
	} else if err := categoryExists(s.db.WithContext(ctx), input.CategoryID); err != nil {
		return models.Recipe{}, err
	}
	if err := validation.Err(); err != nil {
		return models.Recipe{}, err
	}

	resolved, err := s.images.Resolve(ctx, input.Image)
	if err != nil {
		return models.Recipe{}, err
	}

	recipe := models.Recipe{
		Title:       input.Title,
		Body:        input.Body,
		Ingredients: input.Ingredients,
		CategoryID:  input.CategoryID,
		Image:       resolved.Image,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := categoryExists(tx, recipe.CategoryID); err != nil {
			return err
		}
		return tx.Create(&recipe).Error
	})
	if err != nil {
		s.discardImage(ctx, resolved)
		return models.Recipe{}, wrapWriteError("create recipe", err)
	}

	recipesWritten.WithLabelValues("create").Inc()
	log.WithFields(log.Fields{
		"recipe_id":    recipe.ID,
		"category_id":  recipe.CategoryID,
		"image_source": resolved.Source,
	}).Info("Recipe created")

	return s.GetRecipeByID(ctx, recipe.ID)
}

func (s *recipeService) UpdateRecipe(ctx context.Context, id uint, update RecipeUpdate) (models.Recipe, error) {
	existing, err := s.GetRecipeByID(ctx, id)
	if err != nil {
		return models.Recipe{}, err
	}

	update.Title = strings.TrimSpace(update.Title)
	update.Body = strings.TrimSpace(update.Body)

	validation := &ValidationError{}
	if update.Title == "" {
		validation.Add("title", "the title field is required")
	}
	if update.Body == "" {
		validation.Add("body", "the body field is required")
	}
	if update.Ingredients != nil && *update.Ingredients == "" {
		validation.Add("ingredients", "the ingredients field must not be empty")
	}
	if update.CategoryID != nil {
		if *update.CategoryID == 0 {
			validation.Add("category_id", "the selected category_id is invalid")
		} else if err := categoryExists(s.db.WithContext(ctx), *update.CategoryID); err != nil {
			return models.Recipe{}, err
		}
	}
	if err := validation.Err(); err != nil {
		return models.Recipe{}, err
	}

	var resolved ResolvedImage
	if !update.Image.IsEmpty() {
		resolved, err = s.images.Resolve(ctx, update.Image)
		if err != nil {
			return models.Recipe{}, err
		}
	}

	var recipe models.Recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}

		recipe.Title = update.Title
		recipe.Body = update.Body
		if update.Ingredients != nil {
			recipe.Ingredients = *update.Ingredients
		}
		if update.CategoryID != nil {
			if err := categoryExists(tx, *update.CategoryID); err != nil {
				return err
			}
			recipe.CategoryID = *update.CategoryID
		}
		if resolved.Image != nil {
			recipe.Image = resolved.Image
		}
		return tx.Save(&recipe).Error
	})
	if err != nil {
		s.discardImage(ctx, resolved)
		return models.Recipe{}, wrapWriteError("update recipe", err)
	}

	if resolved.Image != nil && !sameImage(existing.Image, resolved.Image) {
		if err := s.images.Remove(ctx, existing.Image); err != nil {
			log.WithError(err).WithField("recipe_id", id).Warn("Failed to remove replaced recipe image")
		}
	}

	recipesWritten.WithLabelValues("update").Inc()
	log.WithField("recipe_id", id).Info("Recipe updated")

	return s.GetRecipeByID(ctx, id)
}

func (s *recipeService) DeleteRecipe(ctx context.Context, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.findRecipe(tx, id)
		if err != nil {
			return err
		}
		recipe = found
		return tx.Delete(&models.Recipe{}, id).Error
	})
	if err != nil {
		return models.Recipe{}, wrapWriteError("delete recipe", err)
	}

	if err := s.images.Remove(ctx, recipe.Image); err != nil {
		log.WithError(err).WithField("recipe_id", id).Warn("Failed to remove image of deleted recipe")
	}

	recipesWritten.WithLabelValues("delete").Inc()
	log.WithField("recipe_id", id).Info("Recipe deleted")

	return recipe, nil
}

func (s *recipeService) findRecipe(db *gorm.DB, id uint) (models.Recipe, error) {
	var recipe models.Recipe
	if err := db.Preload("Category").First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Recipe{}, ErrRecipeNotFound
		}
		return models.Recipe{}, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	if recipe.Category != nil {
		if err := attachCategoryRecipes(db, []*models.Category{recipe.Category}); err != nil {
			return models.Recipe{}, err
		}
	}
	return recipe, nil
}

// discardImage removes an image stored for a write that did not commit
func (s *recipeService) discardImage(ctx context.Context, resolved ResolvedImage) {
	if resolved.Key == "" {
		return
	}
	if err := s.images.Remove(ctx, resolved.Image); err != nil {
		log.WithError(err).WithField("key", resolved.Key).Warn("Failed to remove orphaned recipe image")
	}
}

// categoryExists returns a ValidationError when the category does not exist
func categoryExists(db *gorm.DB, categoryID uint) error {
	var count int64
	if err := db.Model(&models.Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category %d: %w", categoryID, err)
	}
	if count == 0 {
		return NewValidationError("category_id", "the selected category_id is invalid")
	}
	return nil
}

// wrapWriteError keeps domain errors intact and wraps everything else
func wrapWriteError(op string, err error) error {
	var validation *ValidationError
	if errors.As(err, &validation) || errors.Is(err, ErrRecipeNotFound) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func recipeCategories(recipes []models.Recipe) []*models.Category {
	categories := make([]*models.Category, 0, len(recipes))
	for i := range recipes {
		if recipes[i].Category != nil {
			categories = append(categories, recipes[i].Category)
		}
	}
	return categories
}

func sameImage(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
