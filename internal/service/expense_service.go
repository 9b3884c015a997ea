package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitly-be/internal/cache"
	"splitly-be/internal/entities"
	"splitly-be/internal/models"
	"splitly-be/internal/repository"
)

const (
	allExpensesCacheKey = "expenses:all"
	allExpensesCacheTTL = 5 * time.Minute
)

// ExpenseService defines the interface for expense business logic
type ExpenseService interface {
	AddExpense(req *models.AddExpenseRequest, creatorID string) error
	GetUserExpenses(userID string) ([]*entities.Expense, error)
	GetAllExpenses() ([]*entities.Expense, error)
}

type expenseService struct {
	repo  repository.ExpenseRepository
	cache cache.Cache
	ctx   context.Context
}

// NewExpenseService creates a new expense service. cacheClient may be
// nil, in which case every read goes to the repository.
func NewExpenseService(repo repository.ExpenseRepository, cacheClient cache.Cache) ExpenseService {
	svc := &expenseService{
		repo: repo,
		ctx:  context.Background(),
	}
	// Only set cache if provided (allows graceful degradation)
	if cacheClient != nil {
		svc.cache = cacheClient
	}
	return svc
}

// AddExpense persists a new expense owned by creatorID. The split method
// is stored as a tag and participant split amounts are taken as given;
// no reconciliation against the total is performed.
func (s *expenseService) AddExpense(req *models.AddExpenseRequest, creatorID string) error {
	participants := make([]entities.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = entities.Participant{
			UserID:      p.UserID,
			SplitAmount: *p.SplitAmount,
		}
	}

	expense := &entities.Expense{
		Description:  req.Description,
		Amount:       *req.Amount,
		SplitMethod:  req.SplitMethod,
		Participants: participants,
		CreatedBy:    creatorID,
	}

	if err := s.repo.Create(expense); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(s.ctx, allExpensesCacheKey); err != nil {
			slog.Warn("Failed to invalidate expense cache", "error", err)
		}
	}

	return nil
}

// GetUserExpenses returns every expense the user participates in, in
// creation order. The result is never nil so empty sets serialize as [].
func (s *expenseService) GetUserExpenses(userID string) ([]*entities.Expense, error) {
	expenses, err := s.repo.FindByParticipant(userID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*entities.Expense{}
	}
	return expenses, nil
}

// GetAllExpenses returns every expense in the store regardless of the
// caller. Results are cached briefly and invalidated on writes.
func (s *expenseService) GetAllExpenses() ([]*entities.Expense, error) {
	if s.cache != nil {
		var cached []*entities.Expense
		if err := s.cache.GetJSON(s.ctx, allExpensesCacheKey, &cached); err == nil && cached != nil {
			return cached, nil
		}
	}

	expenses, err := s.repo.FindAll()
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*entities.Expense{}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(s.ctx, allExpensesCacheKey, expenses, allExpensesCacheTTL); err != nil {
			slog.Warn("Failed to cache expenses", "error", err)
		}
	}

	return expenses, nil
}
