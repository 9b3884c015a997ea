package controllers

import (
	"log/slog"
	"net/http"

	"splitly-be/internal/middleware"
	"splitly-be/internal/models"
	"splitly-be/internal/service"
	"splitly-be/internal/validation"

	"github.com/gin-gonic/gin"
)

type ExpenseController struct {
	expenseService service.ExpenseService
}

func NewExpenseController(expenseService service.ExpenseService) *ExpenseController {
	return &ExpenseController{
		expenseService: expenseService,
	}
}

// AddExpense handles POST /expenses/add
func (ec *ExpenseController) AddExpense(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return
	}

	var req models.AddExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.FirstError(err),
		})
		return
	}

	if err := ec.expenseService.AddExpense(&req, userID); err != nil {
		slog.Error("Failed to add expense", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Server error",
		})
		return
	}

	c.JSON(http.StatusCreated, models.MessageResponse{
		Message: "Expense added successfully",
	})
}

// GetUserExpenses handles GET /expenses/user
func (ec *ExpenseController) GetUserExpenses(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
		return
	}

	expenses, err := ec.expenseService.GetUserExpenses(userID)
	if err != nil {
		slog.Error("Failed to list user expenses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Server error",
		})
		return
	}

	c.JSON(http.StatusOK, expenses)
}

// GetAllExpenses handles GET /expenses/all
//
// Every expense is returned to any authenticated caller regardless of
// participation. This matches the product's current behavior and is a
// known access-scoping gap.
func (ec *ExpenseController) GetAllExpenses(c *gin.Context) {
	expenses, err := ec.expenseService.GetAllExpenses()
	if err != nil {
		slog.Error("Failed to list expenses", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Server error",
		})
		return
	}

	c.JSON(http.StatusOK, expenses)
}
