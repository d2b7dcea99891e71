package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platewise/recipe-api/internal/api"
	"github.com/platewise/recipe-api/internal/database"
	"github.com/platewise/recipe-api/internal/middleware"
	"github.com/platewise/recipe-api/internal/router"
	"github.com/platewise/recipe-api/internal/service"
)

// TestEnv holds the router and services backing an API test.
type TestEnv struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService *service.AuthService
	UploadRoot  string
}

// SetupTestEnv builds the full route table over an in-memory database and
// a disk file store rooted in a per-test temp directory. Rate limiting is
// off, matching a deployment without Redis.
func SetupTestEnv(t *testing.T) *TestEnv {
	return SetupTestEnvWithLimiters(t, nil, nil)
}

// SetupTestEnvWithLimiters is SetupTestEnv with rate limiters on the
// recipe write and image upload routes.
func SetupTestEnvWithLimiters(t *testing.T, writeLimiter, uploadLimiter *middleware.RateLimiter) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	uploadRoot := t.TempDir()
	authService := service.NewAuthService(db, "test-secret")
	attrService := service.NewAttributeService(db)
	recipeService := service.NewRecipeService(db, service.NewDiskStore(uploadRoot))

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, writeLimiter, uploadLimiter),
		api.NewTagHandler(attrService),
		api.NewIngredientHandler(attrService),
		authService,
	)

	return &TestEnv{
		Router:      engine,
		DB:          db,
		AuthService: authService,
		UploadRoot:  uploadRoot,
	}
}

// CreateTestUserAndToken registers a fresh user and returns their id and a
// valid token.
func CreateTestUserAndToken(t *testing.T, env *TestEnv) (uint, string) {
	t.Helper()

	email := fmt.Sprintf("testuser+%s@example.com", uuid.NewString())
	user, token, err := env.AuthService.Register(context.Background(), email, "testpass123", "Test User")
	require.NoError(t, err)
	return user.ID, token
}

// PerformRequest makes a JSON request against the test router.
func PerformRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// PerformUpload posts a multipart body with the payload in the "image"
// field.
func PerformUpload(t *testing.T, router *gin.Engine, path, token, filename string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeJSON unmarshals a recorder body into a generic map.
func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// pngBytes is a minimal PNG payload, enough for content sniffing.
func pngBytes() []byte {
	return []byte{
		0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R',
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	}
}
