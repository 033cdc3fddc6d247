// Package ledger implements the shared-expense operations: friends, groups,
// bills, payments and balances.
//
// Every public method bounds its store work with the configured store timeout.
// Failures carry the kinds defined in package errs.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/identity"
	"github.com/mmynk/splitledger/internal/storage"
)

// DefaultStoreTimeout bounds each operation when no timeout is configured.
const DefaultStoreTimeout = 5 * time.Second

// Ledger coordinates the record store, identity directory and event publisher.
type Ledger struct {
	store        storage.Store
	directory    *identity.Directory
	publisher    events.Publisher
	storeTimeout time.Duration
	strictCustom bool
	now          func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithStoreTimeout sets the per-operation store timeout.
func WithStoreTimeout(d time.Duration) Option {
	return func(l *Ledger) {
		if d > 0 {
			l.storeTimeout = d
		}
	}
}

// WithStrictCustomSplits requires custom amounts to sum exactly to the bill total.
func WithStrictCustomSplits(strict bool) Option {
	return func(l *Ledger) { l.strictCustom = strict }
}

// WithPublisher sets where committed changes are announced.
func WithPublisher(p events.Publisher) Option {
	return func(l *Ledger) {
		if p != nil {
			l.publisher = p
		}
	}
}

// WithDirectory sets the identity directory, e.g. one backed by a profile cache.
func WithDirectory(d *identity.Directory) Option {
	return func(l *Ledger) {
		if d != nil {
			l.directory = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger over store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:        store,
		publisher:    events.NopPublisher{},
		storeTimeout: DefaultStoreTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.directory == nil {
		l.directory = identity.NewDirectory(store, nil)
	}
	return l
}

// Directory returns the identity directory used by the ledger.
func (l *Ledger) Directory() *identity.Directory {
	return l.directory
}

func (l *Ledger) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, l.storeTimeout)
}

// publish announces a committed change. Failures are logged only.
func (l *Ledger) publish(ctx context.Context, e events.Event) {
	if err := l.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		slog.WarnContext(ctx, "failed to publish ledger event",
			"type", e.Type,
			"subject", e.SubjectID,
			"error", err,
		)
	}
}

// storeErr makes sure a timed out or cancelled call reports ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errs.Kind(err) == errs.ErrStoreUnavailable && !errors.Is(err, errs.ErrStoreUnavailable) {
		return fmt.Errorf("%w: %w", errs.ErrStoreUnavailable, err)
	}
	return err
}

// uniqueIDs drops blanks and duplicates, keeping first-seen order.
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

// requireUsers fails with ErrNotFound naming the first unknown ID.
func (l *Ledger) requireUsers(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	profiles, err := l.directory.Profiles(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := profiles[id]; !ok {
			return errs.NotFound("user", id)
		}
	}
	return nil
}
