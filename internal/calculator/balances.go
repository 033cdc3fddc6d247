package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ComputeBalances folds a bill set into userID's outstanding debt picture.
//
// Algorithm:
//   - Bills userID created: every unpaid split of another user is owed to userID.
//   - Bills created by others: userID's own unpaid split is owed to the creator.
//   - Paid splits contribute nothing.
//
// Counterparties are keyed by user ID; DisplayName is left empty for the
// caller to resolve. The result depends only on the bill set, not its order.
func ComputeBalances(userID string, bills []models.Bill) models.BalanceSummary {
	owedBy := make(map[string]decimal.Decimal)
	owingTo := make(map[string]decimal.Decimal)
	totalOwed := decimal.Zero
	totalOwing := decimal.Zero

	for _, bill := range bills {
		isCreator := bill.CreatedBy == userID

		for _, split := range bill.Splits {
			if split.Paid {
				continue
			}
			isUser := split.UserID == userID

			if isCreator && !isUser {
				totalOwed = totalOwed.Add(split.Amount)
				owedBy[split.UserID] = owedBy[split.UserID].Add(split.Amount)
			}
			if !isCreator && isUser {
				totalOwing = totalOwing.Add(split.Amount)
				owingTo[bill.CreatedBy] = owingTo[bill.CreatedBy].Add(split.Amount)
			}
		}
	}

	return models.BalanceSummary{
		UserID:     userID,
		TotalOwed:  totalOwed,
		TotalOwing: totalOwing,
		OwedBy:     sortedCounterparties(owedBy),
		OwingTo:    sortedCounterparties(owingTo),
	}
}

// sortedCounterparties orders by amount descending, then user ID.
func sortedCounterparties(amounts map[string]decimal.Decimal) []models.CounterpartyBalance {
	out := make([]models.CounterpartyBalance, 0, len(amounts))
	for id, amount := range amounts {
		if amount.IsZero() {
			continue
		}
		out = append(out, models.CounterpartyBalance{UserID: id, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Counterparties returns every user ID appearing in the summary.
func Counterparties(summary models.BalanceSummary) []string {
	ids := make([]string, 0, len(summary.OwedBy)+len(summary.OwingTo))
	for _, c := range summary.OwedBy {
		ids = append(ids, c.UserID)
	}
	for _, c := range summary.OwingTo {
		ids = append(ids, c.UserID)
	}
	return ids
}
