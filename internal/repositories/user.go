package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"online-bookstore/internal/models"
)

// UserRepository handles user data operations
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, password_hash, first_name, last_name, role, is_blocked, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.IsBlocked,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user with the given password hash and role
func (r *UserRepository) Create(email, passwordHash, firstName, lastName string, role models.Role) (*models.User, error) {
	now := time.Now()
	user, err := scanUser(r.db.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, role, is_blocked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
		RETURNING `+userColumns,
		email, passwordHash, firstName, lastName, role, now, now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id int) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// SetRole changes a user's role
func (r *UserRepository) SetRole(id int, role models.Role) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, role)
	}

	result, err := r.db.Exec(`UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`, id, role, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// SetBlocked blocks or unblocks a user
func (r *UserRepository) SetBlocked(id int, blocked bool) error {
	result, err := r.db.Exec(`UPDATE users SET is_blocked = $2, updated_at = $3 WHERE id = $1`, id, blocked, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update blocked flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}
