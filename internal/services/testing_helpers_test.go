package services

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// pngBytes is a 1x1 transparent PNG
var pngBytes, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(&models.Category{}, &models.Recipe{})
	require.NoError(t, err)

	return db
}

func createCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func newTestRecipeService(t *testing.T) (RecipeService, *gorm.DB, *storage.MemoryStore) {
	db := setupTestDB(t)
	store := storage.NewMemoryStore()
	images := NewImageService(store, "http://localhost:8080/api/v1/recipes/images", 0)
	return NewRecipeService(db, images), db, store
}

func strPtr(s string) *string { return &s }

func uintPtr(u uint) *uint { return &u }

var bg = context.Background()
