package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
)

const userColumns = "id, email, handle, display_name, password_hash, created_at, updated_at"

// CreateUser inserts a new user into the database.
// A duplicate email or handle fails with errs.ErrConflict.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Handle,
		user.DisplayName,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: email or handle already registered", errs.ErrConflict)
	}
	if err != nil {
		return classify(fmt.Errorf("failed to create user: %w", err))
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves a user by their ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByHandle retrieves a user by their handle.
func (s *SQLiteStore) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	return s.getUser(ctx, "handle", handle)
}

// getUser looks a user up by one unique column. column is never caller input.
func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`,
		value,
	).Scan(
		&user.ID,
		&user.Email,
		&user.Handle,
		&user.DisplayName,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user", value)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get user by %s: %w", column, err))
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
// Users that don't exist are omitted from the result.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get users by IDs: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Handle,
			&user.DisplayName,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, classify(fmt.Errorf("failed to scan user: %w", err))
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("error iterating users: %w", err))
	}

	return users, nil
}

// UpdateDisplayName changes a user's display name.
func (s *SQLiteStore) UpdateDisplayName(ctx context.Context, id, displayName string, updatedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, updated_at = ? WHERE id = ?`,
		displayName, updatedAt, id,
	)
	if err != nil {
		return classify(fmt.Errorf("failed to update display name: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(fmt.Errorf("failed to update display name: %w", err))
	}
	if n == 0 {
		return errs.NotFound("user", id)
	}
	return nil
}
