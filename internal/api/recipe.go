package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewise/recipe-api/internal/middleware"
	"github.com/platewise/recipe-api/internal/models"
	"github.com/platewise/recipe-api/internal/service"
	"github.com/platewise/recipe-api/internal/types"
)

// maxImageSize caps image uploads at 8 MiB.
const maxImageSize = 8 << 20

type RecipeHandler struct {
	recipeService *service.RecipeService
	writeLimiter  *middleware.RateLimiter
	uploadLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService *service.RecipeService, writeLimiter, uploadLimiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		writeLimiter:  writeLimiter,
		uploadLimiter: uploadLimiter,
	}
}

// RegisterRoutes registers the recipe routes on an authenticated group.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.PATCH("/:id", h.PatchRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)

		create := recipes.Group("")
		if h.writeLimiter != nil {
			create.Use(h.writeLimiter.RateLimitMiddleware())
		}
		create.POST("", h.CreateRecipe)

		upload := recipes.Group("")
		if h.uploadLimiter != nil {
			upload.Use(h.uploadLimiter.RateLimitMiddleware())
		}
		upload.POST("/:id/image", h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	recipes, err := h.recipeService.List(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	summaries := make([]types.RecipeSummary, len(recipes))
	for i, r := range recipes {
		summaries[i] = summarize(&r)
	}

	c.JSON(http.StatusOK, gin.H{"recipes": summaries})
}

func summarize(r *models.Recipe) types.RecipeSummary {
	return types.RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Image:       r.ImagePath,
	}
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	recipe, err := h.recipeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe handles PUT: full replace semantics, required fields must
// be present.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, req.FullUpdate())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// PatchRecipe handles PATCH: only supplied fields change.
func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.recipeService.Delete(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart upload in the "image" field and attaches
// it to the recipe.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image file"})
		return
	}

	recipe, err := h.recipeService.UploadImage(c.Request.Context(), userID, id, fileHeader.Filename, data)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}
