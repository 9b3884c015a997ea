package main

import (
	"log/slog"
	"os"
	"time"

	"splitly-be/internal/cache"
	"splitly-be/internal/config"
	"splitly-be/internal/controllers"
	"splitly-be/internal/database"
	"splitly-be/internal/jwt"
	"splitly-be/internal/logging"
	"splitly-be/internal/middleware"
	"splitly-be/internal/repository"
	"splitly-be/internal/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	logging.Setup()

	// Load configuration
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		slog.Warn("Failed to connect to Redis, continuing without cache", "error", err)
		cacheClient = nil
	} else {
		slog.Info("Connected to Redis cache")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	expenseService := service.NewExpenseService(expenseRepo, cacheClient)

	// Initialize controllers
	userController := controllers.NewUserController(authService)
	expenseController := controllers.NewExpenseController(expenseService)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)

	// Create a Gin router
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	authGuard := middleware.AuthMiddleware(jwtService)

	// User routes: register/login are public with stricter rate limiting
	users := router.Group("/users")
	{
		users.POST("/register", authRateLimiter.LimitMiddleware(), userController.Register)
		users.POST("/login", authRateLimiter.LimitMiddleware(), userController.Login)
		users.GET("/me", generalRateLimiter.LimitMiddleware(), authGuard, userController.GetProfile)
	}

	// Expense routes: all require a valid bearer token
	expenses := router.Group("/expenses")
	expenses.Use(generalRateLimiter.LimitMiddleware(), authGuard)
	{
		expenses.POST("/add", expenseController.AddExpense)
		expenses.GET("/user", expenseController.GetUserExpenses)
		expenses.GET("/all", expenseController.GetAllExpenses)
	}

	addr := ":" + cfg.Port
	slog.Info("Server starting", "addr", addr)
	if err := router.Run(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
