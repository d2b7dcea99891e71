package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/platewise/recipe-api/internal/api"
	"github.com/platewise/recipe-api/internal/middleware"
	"github.com/platewise/recipe-api/internal/service"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	recipeHandler *api.RecipeHandler,
	tagHandler *api.TagHandler,
	ingredientHandler *api.IngredientHandler,
	authService *service.AuthService,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", api.HealthCheck)

	// API v1 routes; auth routes register their own middleware
	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authService))
	{
		recipeHandler.RegisterRoutes(protected)
		tagHandler.RegisterRoutes(protected)
		ingredientHandler.RegisterRoutes(protected)
	}

	return router
}
