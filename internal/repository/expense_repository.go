package repository

import (
	"database/sql"
	"fmt"

	"splitly-be/internal/entities"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ExpenseRepository defines the interface for expense database operations
type ExpenseRepository interface {
	Create(expense *entities.Expense) error
	FindByParticipant(userID string) ([]*entities.Expense, error)
	FindAll() ([]*entities.Expense, error)
}

type expenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

// Create inserts a new expense together with its participant rows in a
// single transaction. The expense ID and timestamps are populated on the
// passed entity. Participant order is preserved via the position column.
func (r *expenseRepository) Create(expense *entities.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO expenses (id, description, amount, split_method, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, expense.ID, expense.Description, expense.Amount, expense.SplitMethod, expense.CreatedBy).Scan(
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, p := range expense.Participants {
		_, err = tx.Exec(`
			INSERT INTO expense_participants (expense_id, position, user_id, split_amount)
			VALUES ($1, $2, $3, $4)
		`, expense.ID, i, p.UserID, p.SplitAmount)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByParticipant retrieves all expenses where the given user appears
// in the participant list, in creation order.
func (r *expenseRepository) FindByParticipant(userID string) ([]*entities.Expense, error) {
	return r.find(`
		SELECT DISTINCT e.id, e.description, e.amount, e.split_method, e.created_by, e.created_at, e.updated_at
		FROM expenses e
		JOIN expense_participants p ON p.expense_id = e.id
		WHERE p.user_id = $1
		ORDER BY e.created_at, e.id
	`, userID)
}

// FindAll retrieves every expense in the store, in creation order.
func (r *expenseRepository) FindAll() ([]*entities.Expense, error) {
	return r.find(`
		SELECT id, description, amount, split_method, created_by, created_at, updated_at
		FROM expenses
		ORDER BY created_at, id
	`)
}

func (r *expenseRepository) find(query string, args ...interface{}) ([]*entities.Expense, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entities.Expense
	var ids []string
	for rows.Next() {
		var e entities.Expense
		err := rows.Scan(
			&e.ID,
			&e.Description,
			&e.Amount,
			&e.SplitMethod,
			&e.CreatedBy,
			&e.CreatedAt,
			&e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, &e)
		ids = append(ids, e.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	if len(expenses) == 0 {
		return expenses, nil
	}

	participants, err := r.loadParticipants(ids)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Participants = participants[e.ID]
	}

	return expenses, nil
}

// loadParticipants fetches participant rows for the given expenses in
// one query, grouped by expense ID and ordered by position.
func (r *expenseRepository) loadParticipants(expenseIDs []string) (map[string][]entities.Participant, error) {
	rows, err := r.db.Query(`
		SELECT expense_id, user_id, split_amount
		FROM expense_participants
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, position
	`, pq.Array(expenseIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make(map[string][]entities.Participant)
	for rows.Next() {
		var expenseID string
		var p entities.Participant
		if err := rows.Scan(&expenseID, &p.UserID, &p.SplitAmount); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants[expenseID] = append(participants[expenseID], p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}
