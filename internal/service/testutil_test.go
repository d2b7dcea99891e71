package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platewise/recipe-api/internal/database"
	"github.com/platewise/recipe-api/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A uniquely named shared-cache database keeps tests isolated while
	// letting every pool connection within a test see the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		Email:        fmt.Sprintf("user+%s@example.com", uuid.NewString()),
		PasswordHash: string(hashed),
		Name:         "Test User",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func listPtr(v ...string) *[]string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
