package database

import (
	"github.com/platewise/recipe-api/internal/models"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. The schema is small enough that
// GORM auto-migration covers it on both PostgreSQL and SQLite; the
// many-to-many join tables are created from the Recipe associations.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
	)
}
