package ledger

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/models"
)

// DefaultRecentBills is how many bills a dashboard shows when not specified.
const DefaultRecentBills = 3

// Dashboard is the landing view of one user.
type Dashboard struct {
	Balances    models.BalanceSummary
	Friends     []models.Profile
	Groups      []*models.Group
	RecentBills []models.Bill
	BillCount   int
}

// Dashboard loads balances, friends, groups and recent bills concurrently.
// Any failure fails the whole call.
func (l *Ledger) Dashboard(ctx context.Context, userID string, recent int) (*Dashboard, error) {
	if recent <= 0 {
		recent = DefaultRecentBills
	}

	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bills, err := l.store.ListBillsForUser(gctx, userID)
		if err != nil {
			return storeErr(err)
		}
		d.BillCount = len(bills)
		d.RecentBills = bills[:min(recent, len(bills))]

		d.Balances, err = l.summarize(gctx, userID, bills)
		return err
	})
	g.Go(func() error {
		var err error
		d.Friends, err = l.ListFriends(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		d.Groups, err = l.ListGroups(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
