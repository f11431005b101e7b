package services

import (
	"database/sql"
	"errors"
	"fmt"

	"online-bookstore/internal/models"
	"online-bookstore/internal/utils"
)

// UserStore provides user persistence
type UserStore interface {
	Create(email, passwordHash, firstName, lastName string, role models.Role) (*models.User, error)
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	SetRole(id int, role models.Role) error
	SetBlocked(id int, blocked bool) error
}

// AuthService handles registration, credential checks, and the
// administrative user operations
type AuthService struct {
	users UserStore
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new buyer account
func (s *AuthService) Register(req *models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(req.Email, hash, req.FirstName, req.LastName, models.RoleBuyer)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies credentials and returns the user. Invalid email,
// wrong password, and blocked accounts all return ErrInvalidCredentials so
// the response does not reveal which check failed.
func (s *AuthService) Authenticate(req *models.LoginRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok || user.IsBlocked {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by id
func (s *AuthService) GetUser(id int) (*models.User, error) {
	return s.users.GetByID(id)
}

// SetRole changes a user's role; admin-only at the handler boundary
func (s *AuthService) SetRole(userID int, role models.Role) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, role)
	}
	return s.users.SetRole(userID, role)
}

// SetBlocked blocks or unblocks a user account
func (s *AuthService) SetBlocked(userID int, blocked bool) error {
	return s.users.SetBlocked(userID, blocked)
}
