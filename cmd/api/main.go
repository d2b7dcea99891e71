package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platewise/recipe-api/config"
	"github.com/platewise/recipe-api/internal/api"
	"github.com/platewise/recipe-api/internal/database"
	"github.com/platewise/recipe-api/internal/middleware"
	"github.com/platewise/recipe-api/internal/router"
	"github.com/platewise/recipe-api/internal/server"
	"github.com/platewise/recipe-api/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Image storage backend
	var store service.FileStore
	switch cfg.StorageBackend {
	case config.StorageS3:
		s3Config, err := config.NewS3Config(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		store = service.NewS3Store(s3Config)
	default:
		store = service.NewDiskStore(cfg.UploadDir)
	}

	// Rate limiting is skipped when Redis is unavailable
	var writeLimiter, uploadLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Warning: rate limiting disabled: %v", err)
	} else {
		writeLimiter = middleware.NewRecipeWriteRateLimiter(redisClient)
		uploadLimiter = middleware.NewImageUploadRateLimiter(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	attrService := service.NewAttributeService(db)
	recipeService := service.NewRecipeService(db, store)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, writeLimiter, uploadLimiter),
		api.NewTagHandler(attrService),
		api.NewIngredientHandler(attrService),
		authService,
	)

	srv := server.New(cfg, engine)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
