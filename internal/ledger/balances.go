package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// ComputeBalances returns what userID is owed and owes across all their bills.
// Display names are filled in for presentation; entries are keyed by user ID.
func (l *Ledger) ComputeBalances(ctx context.Context, userID string) (models.BalanceSummary, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	bills, err := l.store.ListBillsForUser(ctx, userID)
	if err != nil {
		return models.BalanceSummary{}, storeErr(err)
	}
	return l.summarize(ctx, userID, bills)
}

func (l *Ledger) summarize(ctx context.Context, userID string, bills []models.Bill) (models.BalanceSummary, error) {
	summary := calculator.ComputeBalances(userID, bills)

	profiles, err := l.directory.Profiles(ctx, calculator.Counterparties(summary))
	if err != nil {
		return models.BalanceSummary{}, storeErr(err)
	}
	for i := range summary.OwedBy {
		summary.OwedBy[i].DisplayName = profiles[summary.OwedBy[i].UserID].DisplayName
	}
	for i := range summary.OwingTo {
		summary.OwingTo[i].DisplayName = profiles[summary.OwingTo[i].UserID].DisplayName
	}
	return summary, nil
}
