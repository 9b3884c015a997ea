package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"splitly-be/internal/middleware"
	"splitly-be/internal/models"
	"splitly-be/internal/repository"
	"splitly-be/internal/service"
	"splitly-be/internal/validation"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	authService service.AuthService
}

func NewUserController(authService service.AuthService) *UserController {
	return &UserController{
		authService: authService,
	}
}

// Register handles POST /users/register
func (uc *UserController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.FirstError(err),
		})
		return
	}

	if err := uc.authService.Register(&req); err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "User already exists",
			})
			return
		}
		slog.Error("Registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Server error",
		})
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{
		Message: "User created successfully",
	})
}

// Login handles POST /users/login
func (uc *UserController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.FirstError(err),
		})
		return
	}

	token, err := uc.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid credentials",
			})
			return
		}
		slog.Error("Login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Server error",
		})
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

// GetProfile handles GET /users/me
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return
	}

	user, err := uc.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "User not found",
			})
			return
		}
		slog.Error("Profile lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Server error",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
