package ledger

import (
	"context"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// History returns userID's bills matching filter, with stats over all their bills.
func (l *Ledger) History(ctx context.Context, userID string, filter calculator.BillFilter) ([]models.Bill, calculator.HistoryStats, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	bills, err := l.store.ListBillsForUser(ctx, userID)
	if err != nil {
		return nil, calculator.HistoryStats{}, storeErr(err)
	}
	return calculator.FilterBills(bills, filter), calculator.SummarizeHistory(bills), nil
}
