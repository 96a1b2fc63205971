package storage

import (
	"context"
	"fmt"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

const userColumns = `id, username, email, password_hash, role, full_name, created_at`

// CreateUser inserts the user and sets its ID. A username or email collision
// that slips past the caller's checks is reported as a validation error.
func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, full_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
		RETURNING id
	`

	err := s.get(ctx, &user.ID, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.FullName,
		user.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.NewValidationError("username", "A user with that username or email already exists.")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.get(ctx, &user, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *Storage) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	if err := s.get(ctx, &n, `SELECT COUNT(*) FROM users WHERE username = ?`, username); err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return n > 0, nil
}

func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	if err := s.get(ctx, &n, `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER(?)`, email); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

// SearchUsers matches username, full name or email case-insensitively, never
// returning the caller.
func (s *Storage) SearchUsers(ctx context.Context, term string, excludeID int64, limit int) ([]model.User, error) {
	pattern := "%" + escapeLike(term) + "%"
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id <> ?
		  AND (LOWER(username) LIKE LOWER(?) ESCAPE '\'
		    OR LOWER(full_name) LIKE LOWER(?) ESCAPE '\'
		    OR LOWER(email) LIKE LOWER(?) ESCAPE '\')
		ORDER BY username
		LIMIT ?
	`

	users := []model.User{}
	if err := s.list(ctx, &users, query, excludeID, pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
