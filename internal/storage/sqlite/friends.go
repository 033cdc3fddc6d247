package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateFriendship inserts a normalized friend edge.
func (s *SQLiteStore) CreateFriendship(ctx context.Context, f models.Friendship) error {
	if f.UserA == f.UserB {
		return fmt.Errorf("%w: %s", errs.ErrSelfReference, f.UserA)
	}
	if f.UserB < f.UserA {
		f.UserA, f.UserB = f.UserB, f.UserA
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (user_a, user_b, requested_by, created_at) VALUES (?, ?, ?, ?)`,
		f.UserA, f.UserB, f.RequestedBy, f.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s and %s", errs.ErrAlreadyLinked, f.UserA, f.UserB)
	}
	if err != nil {
		return classify(fmt.Errorf("failed to insert friendship: %w", err))
	}
	return nil
}

// ListFriends returns every user sharing an edge with userID.
// Both sides of the edge are folded by one UNION, so each friend appears once.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID string) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, handle, display_name FROM users
		 WHERE id IN (
		     SELECT user_b FROM friendships WHERE user_a = ?
		     UNION
		     SELECT user_a FROM friendships WHERE user_b = ?
		 )
		 ORDER BY display_name, handle`,
		userID, userID,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to list friends: %w", err))
	}
	defer rows.Close()

	var friends []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Handle, &p.DisplayName); err != nil {
			return nil, classify(fmt.Errorf("failed to scan friend: %w", err))
		}
		friends = append(friends, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate friends: %w", err))
	}

	return friends, nil
}
