package models

import (
	"time"
)

// Recipe represents a recipe with its category and optional image
type Recipe struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Ingredients string    `gorm:"type:text" json:"ingredients"`
	CategoryID  uint      `gorm:"not null;index" json:"category_id"`
	Category    *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	// Image holds either a blob key under the recipe images area or an external URL
	Image     *string   `json:"image"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// RecipeSummary is the id/title projection exposed on categories
type RecipeSummary struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	CategoryID uint   `json:"-"`
}
