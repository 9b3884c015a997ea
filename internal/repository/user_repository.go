package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"splitly-be/internal/entities"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserRepository defines the interface for user database operations
type UserRepository interface {
	Create(name, email, mobile, passwordHash string) (*entities.User, error)
	FindByEmail(email string) (*entities.User, error)
	FindByID(id string) (*entities.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database. The unique constraint on
// email is the safety net against concurrent registrations racing past
// the application-level existence check.
func (r *userRepository) Create(name, email, mobile, passwordHash string) (*entities.User, error) {
	query := `
		INSERT INTO users (id, name, email, mobile, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, email, mobile, password_hash, created_at, updated_at
	`

	var user entities.User
	err := r.db.QueryRow(query, uuid.New().String(), name, email, mobile, passwordHash).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Mobile,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// FindByEmail finds a user by email
func (r *userRepository) FindByEmail(email string) (*entities.User, error) {
	return r.findOne(`
		SELECT id, name, email, mobile, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email)
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(id string) (*entities.User, error) {
	return r.findOne(`
		SELECT id, name, email, mobile, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)
}

func (r *userRepository) findOne(query string, arg interface{}) (*entities.User, error) {
	var user entities.User
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Mobile,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}
