package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

const maxGroupNameLength = 100

// CreateGroup creates a group owned by creatorID. The creator is always a member.
func (l *Ledger) CreateGroup(ctx context.Context, creatorID, name string, memberIDs []string) (*models.Group, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validation("group name is required")
	}
	if len(name) > maxGroupNameLength {
		return nil, errs.Validation("group name is longer than %d characters", maxGroupNameLength)
	}

	members := uniqueIDs(append([]string{creatorID}, memberIDs...))
	if err := l.requireUsers(ctx, members); err != nil {
		return nil, storeErr(err)
	}

	group := &models.Group{
		ID:        uuid.New().String(),
		Name:      name,
		CreatorID: creatorID,
		Members:   members,
		CreatedAt: l.now().Unix(),
	}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, storeErr(err)
	}

	l.publish(ctx, events.New(events.GroupCreated, creatorID, group.ID, members...))
	return group, nil
}

// GetGroup returns a group visible to requesterID.
func (l *Ledger) GetGroup(ctx context.Context, groupID, requesterID string) (*models.Group, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err)
	}
	if group.CreatorID != requesterID && !group.HasMember(requesterID) {
		return nil, errs.Forbidden("user %s is not a member of group %s", requesterID, groupID)
	}
	return group, nil
}

// ListGroups returns every group userID created or belongs to, once each.
func (l *Ledger) ListGroups(ctx context.Context, userID string) ([]*models.Group, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	groups, err := l.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return groups, nil
}

// AddMembers adds users to a group. Only the creator may add members;
// users already in the group are ignored.
func (l *Ledger) AddMembers(ctx context.Context, groupID, requesterID string, newMemberIDs []string) (*models.Group, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	group, err := l.ownedGroup(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}

	var toAdd []string
	for _, id := range uniqueIDs(newMemberIDs) {
		if !group.HasMember(id) {
			toAdd = append(toAdd, id)
		}
	}
	if len(toAdd) == 0 {
		return group, nil
	}
	if err := l.requireUsers(ctx, toAdd); err != nil {
		return nil, storeErr(err)
	}

	if err := l.store.AddGroupMembers(ctx, groupID, toAdd); err != nil {
		return nil, storeErr(err)
	}

	updated, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err)
	}
	return updated, nil
}

// DeleteGroup removes a group and its membership. Only the creator may delete it.
// Bills created through the group are kept.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID, requesterID string) error {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	group, err := l.ownedGroup(ctx, groupID, requesterID)
	if err != nil {
		return err
	}
	if err := l.store.DeleteGroup(ctx, groupID); err != nil {
		return storeErr(err)
	}

	l.publish(ctx, events.New(events.GroupDeleted, requesterID, groupID, group.Members...))
	return nil
}

func (l *Ledger) ownedGroup(ctx context.Context, groupID, requesterID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeErr(err)
	}
	if group.CreatorID != requesterID {
		return nil, errs.Forbidden("only the creator can modify group %s", groupID)
	}
	return group, nil
}
