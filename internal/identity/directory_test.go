package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

type mapCache struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	hits     int
}

func newMapCache() *mapCache {
	return &mapCache{profiles: make(map[string]models.Profile)}
}

func (c *mapCache) GetProfiles(_ context.Context, ids []string) (map[string]models.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]models.Profile)
	for _, id := range ids {
		if p, ok := c.profiles[id]; ok {
			out[id] = p
			c.hits++
		}
	}
	return out, nil
}

func (c *mapCache) SetProfiles(_ context.Context, profiles []models.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range profiles {
		c.profiles[p.ID] = p
	}
	return nil
}

func (c *mapCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.profiles, id)
	return nil
}

func setupStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "identity-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addUser(t *testing.T, store *sqlite.SQLiteStore, handle, name string) *models.User {
	t.Helper()
	u := models.NewUser(handle+"@example.com", handle, name, "hash")
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestNormalizeAndValidateHandle(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{"@Alice", "alice", false},
		{"  bob_99 ", "bob_99", false},
		{"ab", "ab", true},
		{"has space", "has space", true},
		{"dash-ed", "dash-ed", true},
		{"@", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := NormalizeHandle(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.in, got, tt.want)
			}
			err := ValidateHandle(got)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHandle(%q) error = %v, wantErr %v", got, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errs.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestDirectory(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	alice := addUser(t, store, "alice", "Alice")
	bob := addUser(t, store, "bob", "Bob")

	cache := newMapCache()
	dir := NewDirectory(store, cache)

	t.Run("batch omits unknown IDs", func(t *testing.T) {
		profiles, err := dir.Profiles(ctx, []string{alice.ID, bob.ID, "ghost", alice.ID})
		if err != nil {
			t.Fatalf("Profiles failed: %v", err)
		}
		if len(profiles) != 2 {
			t.Fatalf("expected 2 profiles, got %d", len(profiles))
		}
		if profiles[bob.ID].DisplayName != "Bob" {
			t.Errorf("unexpected profile for bob: %+v", profiles[bob.ID])
		}
	})

	t.Run("second lookup is served from cache", func(t *testing.T) {
		before := cache.hits
		if _, err := dir.Profile(ctx, alice.ID); err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if cache.hits != before+1 {
			t.Errorf("expected a cache hit")
		}
	})

	t.Run("unknown single lookup", func(t *testing.T) {
		if _, err := dir.Profile(ctx, "ghost"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("by handle", func(t *testing.T) {
		p, err := dir.ByHandle(ctx, "@BOB")
		if err != nil {
			t.Fatalf("ByHandle failed: %v", err)
		}
		if p.ID != bob.ID {
			t.Errorf("ByHandle returned %s, want %s", p.ID, bob.ID)
		}
		if _, err := dir.ByHandle(ctx, "nobody"); !errors.Is(err, errs.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("display name update invalidates cache", func(t *testing.T) {
		p, err := dir.UpdateDisplayName(ctx, alice.ID, "  Alice Liddell ")
		if err != nil {
			t.Fatalf("UpdateDisplayName failed: %v", err)
		}
		if p.DisplayName != "Alice Liddell" || p.Handle != "alice" {
			t.Errorf("unexpected profile after update: %+v", p)
		}
		got, err := dir.Profile(ctx, alice.ID)
		if err != nil {
			t.Fatalf("Profile failed: %v", err)
		}
		if got.DisplayName != "Alice Liddell" {
			t.Errorf("stale cached display name %q", got.DisplayName)
		}
	})

	t.Run("blank display name", func(t *testing.T) {
		if _, err := dir.UpdateDisplayName(ctx, alice.ID, "   "); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})
}

func TestDirectoryFallsThroughUnreachableRedis(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	alice := addUser(t, store, "alice", "Alice")

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	dir := NewDirectory(store, NewRedisCache(client, time.Minute))

	p, err := dir.Profile(ctx, alice.ID)
	if err != nil {
		t.Fatalf("Profile failed with unreachable cache: %v", err)
	}
	if p.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want Alice", p.DisplayName)
	}
	if _, err := dir.UpdateDisplayName(ctx, alice.ID, "Al"); err != nil {
		t.Errorf("UpdateDisplayName failed with unreachable cache: %v", err)
	}
}

func TestRedisCacheClose(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	cache := NewRedisCache(client, time.Minute)

	if err := cache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := cache.GetProfiles(context.Background(), []string{"u1"}); !errors.Is(err, redis.ErrClosed) {
		t.Errorf("GetProfiles after Close error = %v, want %v", err, redis.ErrClosed)
	}
}
