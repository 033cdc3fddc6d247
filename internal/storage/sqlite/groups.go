package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup inserts a group and its members in a transaction.
// The creator is always stored as a member.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_groups (id, name, creator_id, created_at) VALUES (?, ?, ?, ?)`,
			group.ID, group.Name, group.CreatorID, group.CreatedAt,
		)
		if err != nil {
			return classify(fmt.Errorf("failed to insert group: %w", err))
		}

		members := append([]string{group.CreatorID}, group.Members...)
		return insertMembers(ctx, tx, group.ID, members)
	})
}

// insertMembers adds member rows, skipping ones already present.
func insertMembers(ctx context.Context, tx *sql.Tx, groupID string, memberIDs []string) error {
	for _, memberID := range memberIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO group_members (group_id, member_id) VALUES (?, ?)`,
			groupID, memberID,
		)
		if err != nil {
			return classify(fmt.Errorf("failed to insert group member %s: %w", memberID, err))
		}
	}
	return nil
}

// GetGroup retrieves a group with its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	var group *models.Group
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		g := &models.Group{}
		err := tx.QueryRowContext(ctx,
			`SELECT id, name, creator_id, created_at FROM user_groups WHERE id = ?`,
			groupID,
		).Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("group", groupID)
		}
		if err != nil {
			return classify(fmt.Errorf("failed to get group: %w", err))
		}

		members, err := loadMembers(ctx, tx, []string{groupID})
		if err != nil {
			return err
		}
		g.Members = members[groupID]
		group = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsForUser returns the groups userID created or belongs to, oldest first.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	var groups []*models.Group
	err := s.readTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx,
			`SELECT id, name, creator_id, created_at FROM user_groups
			 WHERE id IN (
			     SELECT id FROM user_groups WHERE creator_id = ?
			     UNION
			     SELECT group_id FROM group_members WHERE member_id = ?
			 )
			 ORDER BY created_at, id`,
			userID, userID,
		)
		if err != nil {
			return classify(fmt.Errorf("failed to list groups: %w", err))
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			g := &models.Group{}
			if err := rows.Scan(&g.ID, &g.Name, &g.CreatorID, &g.CreatedAt); err != nil {
				return classify(fmt.Errorf("failed to scan group: %w", err))
			}
			groups = append(groups, g)
			ids = append(ids, g.ID)
		}
		if err := rows.Err(); err != nil {
			return classify(fmt.Errorf("failed to iterate groups: %w", err))
		}
		rows.Close()

		members, err := loadMembers(ctx, tx, ids)
		if err != nil {
			return err
		}
		for _, g := range groups {
			g.Members = members[g.ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// loadMembers returns member IDs per group in insertion order.
func loadMembers(ctx context.Context, q queryer, groupIDs []string) (map[string][]string, error) {
	members := make(map[string][]string, len(groupIDs))
	if len(groupIDs) == 0 {
		return members, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT group_id, member_id FROM group_members
		 WHERE group_id IN (`+placeholders(len(groupIDs))+`)
		 ORDER BY rowid`,
		stringArgs(groupIDs)...,
	)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to get group members: %w", err))
	}
	defer rows.Close()

	for rows.Next() {
		var groupID, memberID string
		if err := rows.Scan(&groupID, &memberID); err != nil {
			return nil, classify(fmt.Errorf("failed to scan group member: %w", err))
		}
		members[groupID] = append(members[groupID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate group members: %w", err))
	}
	return members, nil
}

// AddGroupMembers adds members to an existing group. Existing members are ignored.
func (s *SQLiteStore) AddGroupMembers(ctx context.Context, groupID string, memberIDs []string) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM user_groups WHERE id = ?`, groupID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("group", groupID)
		}
		if err != nil {
			return classify(fmt.Errorf("failed to get group: %w", err))
		}
		return insertMembers(ctx, tx, groupID, memberIDs)
	})
}

// DeleteGroup removes a group and its membership rows.
// Bills that referenced the group keep their splits; their group reference is cleared.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	return s.writeTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = ?`, groupID); err != nil {
			return classify(fmt.Errorf("failed to delete group members: %w", err))
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM user_groups WHERE id = ?`, groupID)
		if err != nil {
			return classify(fmt.Errorf("failed to delete group: %w", err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return classify(fmt.Errorf("failed to delete group: %w", err))
		}
		if n == 0 {
			return errs.NotFound("group", groupID)
		}
		return nil
	})
}
