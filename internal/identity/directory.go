// Package identity resolves user IDs and handles to public profiles.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// NormalizeHandle lower-cases a handle and strips a leading "@".
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// ValidateHandle checks a normalized handle.
func ValidateHandle(handle string) error {
	if !handlePattern.MatchString(handle) {
		return errs.Validation("handle must be 3-30 characters of a-z, 0-9 or _")
	}
	return nil
}

// Cache stores profiles by user ID. Implementations may lose entries at any time.
type Cache interface {
	GetProfiles(ctx context.Context, ids []string) (map[string]models.Profile, error)
	SetProfiles(ctx context.Context, profiles []models.Profile) error
	Delete(ctx context.Context, id string) error
}

// Directory looks profiles up in the user store, optionally through a cache.
type Directory struct {
	users storage.UserStore
	cache Cache
}

// NewDirectory creates a Directory. cache may be nil.
func NewDirectory(users storage.UserStore, cache Cache) *Directory {
	return &Directory{users: users, cache: cache}
}

// Profile returns the profile for id, or an errs.ErrNotFound error.
func (d *Directory) Profile(ctx context.Context, id string) (models.Profile, error) {
	profiles, err := d.Profiles(ctx, []string{id})
	if err != nil {
		return models.Profile{}, err
	}
	p, ok := profiles[id]
	if !ok {
		return models.Profile{}, errs.NotFound("user", id)
	}
	return p, nil
}

// Profiles resolves ids in one batch. Unknown IDs are omitted.
func (d *Directory) Profiles(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	ids = uniqueIDs(ids)
	profiles := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	missing := ids
	if d.cache != nil {
		cached, err := d.cache.GetProfiles(ctx, ids)
		if err != nil {
			slog.WarnContext(ctx, "profile cache read failed", "error", err)
		}
		missing = nil
		for _, id := range ids {
			if p, ok := cached[id]; ok {
				profiles[id] = p
				continue
			}
			missing = append(missing, id)
		}
		if len(missing) == 0 {
			return profiles, nil
		}
	}

	users, err := d.users.GetUsersByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profiles: %w", err)
	}

	loaded := make([]models.Profile, 0, len(users))
	for _, u := range users {
		p := u.Profile()
		profiles[p.ID] = p
		loaded = append(loaded, p)
	}

	if d.cache != nil && len(loaded) > 0 {
		if err := d.cache.SetProfiles(ctx, loaded); err != nil {
			slog.WarnContext(ctx, "profile cache write failed", "error", err)
		}
	}
	return profiles, nil
}

// ByHandle resolves a handle such as "@alice" to a profile.
func (d *Directory) ByHandle(ctx context.Context, handle string) (models.Profile, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return models.Profile{}, errs.Validation("handle is required")
	}
	u, err := d.users.GetUserByHandle(ctx, handle)
	if err != nil {
		return models.Profile{}, err
	}
	return u.Profile(), nil
}

// UpdateDisplayName changes a user's display name and drops their cached profile.
func (d *Directory) UpdateDisplayName(ctx context.Context, id, displayName string) (models.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return models.Profile{}, errs.Validation("display name is required")
	}
	if len(displayName) > 100 {
		return models.Profile{}, errs.Validation("display name is longer than 100 characters")
	}

	if err := d.users.UpdateDisplayName(ctx, id, displayName, time.Now().Unix()); err != nil {
		return models.Profile{}, err
	}
	if d.cache != nil {
		if err := d.cache.Delete(ctx, id); err != nil {
			slog.WarnContext(ctx, "profile cache invalidation failed", "user_id", id, "error", err)
		}
	}

	u, err := d.users.GetUserByID(ctx, id)
	if err != nil {
		return models.Profile{}, err
	}
	return u.Profile(), nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
