package models

import "github.com/shopspring/decimal"

// SplitPolicy selects how a bill total is allocated across participants.
type SplitPolicy string

const (
	// PolicyEven divides the total equally among the creator and participants.
	PolicyEven SplitPolicy = "even"
	// PolicyCustom takes each participant's amount from caller input.
	PolicyCustom SplitPolicy = "custom"
)

// Valid reports whether p is a known policy.
func (p SplitPolicy) Valid() bool {
	return p == PolicyEven || p == PolicyCustom
}

// Bill represents a recorded shared expense.
// After creation only the paid state of its splits may change.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name for the bill.
	Title string

	// Description is optional free text.
	Description string

	// Total is the full bill amount. It equals the sum of item costs when
	// items are present, and is never less than the sum of split amounts.
	Total decimal.Decimal

	// CreatedBy is the user who recorded the bill and paid the merchant.
	CreatedBy string

	// GroupID optionally references the group used to pick participants.
	GroupID string

	// BillDate is the Unix timestamp of the expense itself.
	BillDate int64

	// CreatedAt is the Unix timestamp when the bill was recorded.
	CreatedAt int64

	// Items is the optional line-item breakdown of Total.
	Items []Item

	// Splits holds one obligation per participant. The creator has none.
	Splits []Split
}

// Item is a single line of a bill's breakdown.
type Item struct {
	ID    string
	Label string
	Cost  decimal.Decimal
}

// Split is one participant's obligation on a bill.
type Split struct {
	BillID string
	UserID string
	Amount decimal.Decimal

	// Paid only ever moves from false to true.
	Paid bool

	// PaidAt is the Unix timestamp of the transition, zero while unpaid.
	PaidAt int64

	// PaidBy is the user who marked the split paid: the debtor or the creator.
	PaidBy string
}

// SplitFor returns the split held by userID, if any.
func (b *Bill) SplitFor(userID string) (*Split, bool) {
	for i := range b.Splits {
		if b.Splits[i].UserID == userID {
			return &b.Splits[i], true
		}
	}
	return nil, false
}

// SplitTotal sums the materialized split amounts.
func (b *Bill) SplitTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range b.Splits {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// CreatorShare is the creator's implicit share of the bill.
func (b *Bill) CreatorShare() decimal.Decimal {
	return b.Total.Sub(b.SplitTotal())
}

// IsVisibleTo reports whether userID created the bill or holds a split on it.
func (b *Bill) IsVisibleTo(userID string) bool {
	if b.CreatedBy == userID {
		return true
	}
	_, ok := b.SplitFor(userID)
	return ok
}
