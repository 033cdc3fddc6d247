package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

// AddFriend links requesterID with the user owning targetHandle.
//
// Fails with ErrNotFound for an unknown handle, ErrSelfReference for the
// requester's own handle and ErrAlreadyLinked when either direction exists.
func (l *Ledger) AddFriend(ctx context.Context, requesterID, targetHandle string) (*models.Profile, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	target, err := l.directory.ByHandle(ctx, targetHandle)
	if err != nil {
		return nil, storeErr(err)
	}
	if target.ID == requesterID {
		return nil, fmt.Errorf("%w: cannot befriend yourself", errs.ErrSelfReference)
	}

	f := models.NewFriendship(requesterID, target.ID, l.now().Unix())
	if err := l.store.CreateFriendship(ctx, f); err != nil {
		return nil, storeErr(err)
	}

	l.publish(ctx, events.New(events.FriendAdded, requesterID, target.ID, requesterID, target.ID))
	return &target, nil
}

// ListFriends returns each friend of userID once, ordered by display name then handle.
func (l *Ledger) ListFriends(ctx context.Context, userID string) ([]models.Profile, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	friends, err := l.store.ListFriends(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}

	seen := make(map[string]bool, len(friends))
	out := make([]models.Profile, 0, len(friends))
	for _, f := range friends {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].Handle < out[j].Handle
	})
	return out, nil
}
