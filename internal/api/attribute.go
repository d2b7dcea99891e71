package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platewise/recipe-api/internal/middleware"
	"github.com/platewise/recipe-api/internal/service"
	"github.com/platewise/recipe-api/internal/types"
)

// TagHandler manages the /tags endpoints. There is no create endpoint:
// tags come into existence through the recipe write path only.
type TagHandler struct {
	attrService *service.AttributeService
}

func NewTagHandler(attrService *service.AttributeService) *TagHandler {
	return &TagHandler{attrService: attrService}
}

func (h *TagHandler) RegisterRoutes(router *gin.RouterGroup) {
	tags := router.Group("/tags")
	{
		tags.GET("", h.ListTags)
		tags.PATCH("/:id", h.UpdateTag)
		tags.DELETE("/:id", h.DeleteTag)
	}
}

func (h *TagHandler) ListTags(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	assignedOnly := c.Query("assigned_only") == "1"
	tags, err := h.attrService.ListTags(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

func (h *TagHandler) UpdateTag(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.attrService.UpdateTag(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.attrService.DeleteTag(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// IngredientHandler manages the /ingredients endpoints, mirroring
// TagHandler on the ingredient namespace.
type IngredientHandler struct {
	attrService *service.AttributeService
}

func NewIngredientHandler(attrService *service.AttributeService) *IngredientHandler {
	return &IngredientHandler{attrService: attrService}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.PATCH("/:id", h.UpdateIngredient)
		ingredients.DELETE("/:id", h.DeleteIngredient)
	}
}

func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	assignedOnly := c.Query("assigned_only") == "1"
	ingredients, err := h.attrService.ListIngredients(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (h *IngredientHandler) UpdateIngredient(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req types.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient, err := h.attrService.UpdateIngredient(c.Request.Context(), userID, id, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredient)
}

func (h *IngredientHandler) DeleteIngredient(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.attrService.DeleteIngredient(c.Request.Context(), userID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
