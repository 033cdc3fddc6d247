package calculator

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// BillStatus filters bills by settlement progress.
type BillStatus string

const (
	StatusAll     BillStatus = "all"
	StatusPaid    BillStatus = "paid"
	StatusPending BillStatus = "pending"
)

// BillFilter narrows a bill history.
type BillFilter struct {
	Status BillStatus

	// Search matches title or description, case-insensitively.
	Search string
}

// HistoryStats summarizes a bill history.
type HistoryStats struct {
	Total       int
	Paid        int
	Pending     int
	TotalAmount decimal.Decimal
}

// IsFullyPaid reports whether every split on the bill is paid.
func IsFullyPaid(bill models.Bill) bool {
	for _, s := range bill.Splits {
		if !s.Paid {
			return false
		}
	}
	return true
}

// BillProgress returns how many splits are paid out of how many exist.
func BillProgress(bill models.Bill) (paid, total int) {
	for _, s := range bill.Splits {
		if s.Paid {
			paid++
		}
	}
	return paid, len(bill.Splits)
}

// FilterBills returns the bills matching f, preserving order.
func FilterBills(bills []models.Bill, f BillFilter) []models.Bill {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Bill, 0, len(bills))
	for _, b := range bills {
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Description), search) {
			continue
		}
		switch f.Status {
		case StatusPaid:
			if !IsFullyPaid(b) {
				continue
			}
		case StatusPending:
			if IsFullyPaid(b) {
				continue
			}
		}
		out = append(out, b)
	}
	return out
}

// SummarizeHistory counts paid and pending bills and sums their totals.
func SummarizeHistory(bills []models.Bill) HistoryStats {
	stats := HistoryStats{Total: len(bills), TotalAmount: decimal.Zero}
	for _, b := range bills {
		if IsFullyPaid(b) {
			stats.Paid++
		} else {
			stats.Pending++
		}
		stats.TotalAmount = stats.TotalAmount.Add(b.Total)
	}
	return stats
}

// ParseBillStatus maps caller input to a BillStatus; empty means all.
func ParseBillStatus(s string) (BillStatus, bool) {
	switch BillStatus(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusAll:
		return StatusAll, true
	case StatusPaid:
		return StatusPaid, true
	case StatusPending:
		return StatusPending, true
	default:
		return "", false
	}
}
