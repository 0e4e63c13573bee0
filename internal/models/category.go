package models

import (
	"time"
)

// Category groups recipes. Recipes is derived on read and never persisted.
type Category struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Recipes   []RecipeSummary `gorm:"-" json:"recipes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}
