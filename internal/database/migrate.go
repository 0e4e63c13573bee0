package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"gorm.io/gorm"
)

// DefaultCategories are created on first start when seeding is enabled
var DefaultCategories = []string{"Breakfast", "Lunch", "Dinner", "Desserts", "Drinks"}

// Migrate creates or updates the categories and recipes tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Category{}, &models.Recipe{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	log.Info("Database schema migrated")
	return nil
}

// Seed inserts DefaultCategories when the categories table is empty
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		log.Info("Database already seeded with initial data")
		return nil
	}

	log.Info("Database is empty, seeding initial data")
	categories := make([]models.Category, 0, len(DefaultCategories))
	for _, name := range DefaultCategories {
		categories = append(categories, models.Category{Name: name})
	}
	if err := db.Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	log.WithField("categories", len(categories)).Info("Database seeded successfully")
	return nil
}
