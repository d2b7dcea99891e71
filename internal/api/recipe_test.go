package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/recipe-api/internal/models"
)

func createRecipePayload() map[string]interface{} {
	return map[string]interface{}{
		"title":        "pongal",
		"description":  "savory rice dish",
		"time_minutes": 45,
		"price":        "4.55",
		"link":         "http://example.com/pongal",
		"tags":         []string{"Indian", "Breakfast"},
		"ingredients":  []string{"rice", "lentils"},
	}
}

func TestRecipesAuthRequired(t *testing.T) {
	env := SetupTestEnv(t)

	w := PerformRequest(env.Router, http.MethodGet, "/api/v1/recipes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", "", createRecipePayload())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRecipe(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeJSON(t, w)
	assert.NotZero(t, body["id"])
	assert.Equal(t, "pongal", body["title"])
	assert.Equal(t, "4.55", body["price"])
	assert.Len(t, body["tags"], 2)
	assert.Len(t, body["ingredients"], 2)
}

func TestCreateRecipeMissingRequiredField(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	payload := createRecipePayload()
	delete(payload, "title")

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipesLimitedToUser(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)
	_, otherToken := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)

	other := createRecipePayload()
	other["title"] = "not yours"
	w = PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", otherToken, other)
	require.Equal(t, http.StatusCreated, w.Code)

	w = PerformRequest(env.Router, http.MethodGet, "/api/v1/recipes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	recipes := body["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	first := recipes[0].(map[string]interface{})
	assert.Equal(t, "pongal", first["title"])

	// The list shape is the summary: no description, no relation sets
	assert.NotContains(t, first, "description")
	assert.NotContains(t, first, "ingredients")
}

func TestGetRecipeDetail(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformRequest(env.Router, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%.0f", id), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, "savory rice dish", body["description"])
	assert.Len(t, body["tags"], 2)
}

func TestGetOtherUsersRecipeNotFound(t *testing.T) {
	env := SetupTestEnv(t)
	_, ownerToken := CreateTestUserAndToken(t, env)
	_, intruderToken := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", ownerToken, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformRequest(env.Router, http.MethodGet, fmt.Sprintf("/api/v1/recipes/%.0f", id), intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchRecipe(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformRequest(env.Router, http.MethodPatch, fmt.Sprintf("/api/v1/recipes/%.0f", id), token, map[string]interface{}{
		"title": "millet pongal",
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, "millet pongal", body["title"])
	// Untouched fields and relations survive the patch
	assert.Equal(t, "savory rice dish", body["description"])
	assert.Len(t, body["tags"], 2)
}

func TestPatchRecipeIgnoresOwnerField(t *testing.T) {
	env := SetupTestEnv(t)
	userID, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformRequest(env.Router, http.MethodPatch, fmt.Sprintf("/api/v1/recipes/%.0f", id), token, map[string]interface{}{
		"title":   "still mine",
		"user_id": 99999,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var recipe models.Recipe
	require.NoError(t, env.DB.First(&recipe, uint(id)).Error)
	assert.Equal(t, userID, recipe.UserID)
}

func TestPutRecipeClearsTags(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformRequest(env.Router, http.MethodPut, fmt.Sprintf("/api/v1/recipes/%.0f", id), token, map[string]interface{}{
		"title":        "upma",
		"time_minutes": 20,
		"price":        "3.25",
		"tags":         []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	assert.Equal(t, "upma", body["title"])
	assert.Empty(t, body["tags"])

	// Clearing unbinds but does not delete the tag entities
	var count int64
	require.NoError(t, env.DB.Model(&models.Tag{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestPatchClearIngredients(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformRequest(env.Router, http.MethodPatch, fmt.Sprintf("/api/v1/recipes/%.0f", id), token, map[string]interface{}{
		"ingredients": []string{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeJSON(t, w)["ingredients"])
}

func TestDeleteRecipe(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	path := fmt.Sprintf("/api/v1/recipes/%.0f", id)
	w = PerformRequest(env.Router, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = PerformRequest(env.Router, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOtherUsersRecipe(t *testing.T) {
	env := SetupTestEnv(t)
	_, ownerToken := CreateTestUserAndToken(t, env)
	_, intruderToken := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", ownerToken, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	path := fmt.Sprintf("/api/v1/recipes/%.0f", id)
	w = PerformRequest(env.Router, http.MethodDelete, path, intruderToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Still there for the owner
	w = PerformRequest(env.Router, http.MethodGet, path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUploadImage(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformUpload(t, env.Router, fmt.Sprintf("/api/v1/recipes/%.0f/image", id), token, "pongal.png", pngBytes())
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeJSON(t, w)
	assert.Contains(t, body["image"], "uploads/recipe/")
}

func TestUploadNonImageRejected(t *testing.T) {
	env := SetupTestEnv(t)
	_, token := CreateTestUserAndToken(t, env)

	w := PerformRequest(env.Router, http.MethodPost, "/api/v1/recipes", token, createRecipePayload())
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["id"].(float64)

	w = PerformUpload(t, env.Router, fmt.Sprintf("/api/v1/recipes/%.0f/image", id), token, "fake.png", []byte("plain text"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
