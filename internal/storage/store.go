// Package storage provides abstractions for persistent data storage.
//
// Implementations report failures with the kinds in package errs: missing rows
// as errs.ErrNotFound, write contention as errs.ErrConflict, and timeouts or
// connection failures as errs.ErrStoreUnavailable.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// UserStore persists accounts and resolves profiles.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByHandle(ctx context.Context, handle string) (*models.User, error)

	// GetUsersByIDs returns the users that exist, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateDisplayName changes the mutable part of a profile. Handles never change.
	UpdateDisplayName(ctx context.Context, id, displayName string, updatedAt int64) error
}

// FriendStore persists undirected friend edges.
type FriendStore interface {
	// CreateFriendship inserts a normalized edge. An edge for the same
	// unordered pair fails with errs.ErrAlreadyLinked.
	CreateFriendship(ctx context.Context, f models.Friendship) error

	// ListFriends returns the profile on the other end of every edge touching
	// userID, one entry per friend.
	ListFriends(ctx context.Context, userID string) ([]models.Profile, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup inserts the group and all member rows atomically.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForUser returns groups userID created or belongs to, one per ID.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// AddGroupMembers inserts members, ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, memberIDs []string) error

	// DeleteGroup removes membership rows and the group row atomically.
	DeleteGroup(ctx context.Context, groupID string) error
}

// BillStore persists bills with their items and splits.
type BillStore interface {
	// CreateBill inserts the bill header, items and splits atomically.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// ListBillsForUser returns bills userID created or holds a split on, one per ID,
	// newest first.
	ListBillsForUser(ctx context.Context, userID string) ([]models.Bill, error)

	// MarkSplitPaid flips the split to paid if it is unpaid and returns the
	// stored split. The bool reports whether this call performed the transition.
	MarkSplitPaid(ctx context.Context, billID, userID, actingUserID string, paidAt int64) (*models.Split, bool, error)
}

// Store defines the full record store used by the ledger.
// This abstraction allows swapping storage backends without changing the
// ledger or service layers.
type Store interface {
	UserStore
	FriendStore
	GroupStore
	BillStore

	// Close releases any resources held by the store.
	Close() error
}
