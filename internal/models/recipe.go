package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is the aggregate root. Tags and Ingredients are per-user entities
// attached many-to-many; the join rows carry no payload of their own.
type Recipe struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UserID      uint            `gorm:"not null;index" json:"-"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	TimeMinutes int             `gorm:"not null;check:time_minutes >= 0" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"price"`
	Link        string          `gorm:"size:255" json:"link"`
	ImagePath   string          `gorm:"size:255" json:"image"`
	Tags        []Tag           `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []Ingredient    `gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE" json:"ingredients"`
}

// Tag names are unique per owner. The composite index backs the
// lookup-or-create path so concurrent identical requests cannot
// insert two rows for the same (owner, name).
type Tag struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name" json:"name"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"-"`
}

// Ingredient mirrors Tag in a separate namespace.
type Ingredient struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_ingredients_user_name" json:"name"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_ingredients_user_name" json:"-"`
}
