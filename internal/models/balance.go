package models

import "github.com/shopspring/decimal"

// BalanceSummary is one user's outstanding debt picture, derived at read time.
type BalanceSummary struct {
	UserID string

	// TotalOwed is what others still owe this user.
	TotalOwed decimal.Decimal

	// TotalOwing is what this user still owes others.
	TotalOwing decimal.Decimal

	// OwedBy lists counterparties who owe this user, keyed by user ID.
	OwedBy []CounterpartyBalance

	// OwingTo lists counterparties this user owes.
	OwingTo []CounterpartyBalance
}

// CounterpartyBalance is the net unpaid amount between the user and one counterparty.
type CounterpartyBalance struct {
	UserID string

	// DisplayName is resolved for presentation only and never used as a key.
	DisplayName string

	Amount decimal.Decimal
}
