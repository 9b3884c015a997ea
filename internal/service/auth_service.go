package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"splitly-be/internal/entities"
	"splitly-be/internal/jwt"
	"splitly-be/internal/models"
	"splitly-be/internal/repository"
)

var (
	// ErrUserExists is returned when registering with an email that is
	// already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for both unknown emails and
	// wrong passwords so login failures don't leak account existence.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService defines the interface for authentication business logic
type AuthService interface {
	Register(req *models.RegisterRequest) error
	Login(req *models.LoginRequest) (string, error)
	GetProfile(userID string) (*entities.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *jwt.JWTService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtService *jwt.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a new user account with an irreversibly hashed
// password. Nothing beyond the acknowledgment is returned to the caller.
func (s *authService) Register(req *models.RegisterRequest) error {
	// Check if user already exists
	existingUser, err := s.userRepo.FindByEmail(req.Email)
	if err == nil && existingUser != nil {
		return ErrUserExists
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.userRepo.Create(req.Name, req.Email, req.Mobile, string(hashedPassword)); err != nil {
		// Concurrent registration slipping past the existence check
		// lands on the unique constraint instead.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Login verifies the credentials and issues a signed token embedding the
// user's ID.
func (s *authService) Login(req *models.LoginRequest) (string, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return token, nil
}

// GetProfile fetches the user record for the authenticated identity. The
// password hash is excluded from serialization at the entity level.
func (s *authService) GetProfile(userID string) (*entities.User, error) {
	return s.userRepo.FindByID(userID)
}
