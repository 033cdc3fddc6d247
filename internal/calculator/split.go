package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/models"
)

// centPlaces is the number of decimal places in the minimal currency unit.
const centPlaces = 2

// AllocationInput describes one bill to be split.
type AllocationInput struct {
	Total     decimal.Decimal
	CreatorID string

	// ParticipantIDs lists who owes a share, excluding the creator.
	// Duplicates and the creator are dropped.
	ParticipantIDs []string

	Policy models.SplitPolicy

	// CustomAmounts holds per-participant amounts for PolicyCustom.
	// Missing participants default to zero. Amounts must be whole cents.
	CustomAmounts map[string]decimal.Decimal

	// RequireExactCustom rejects custom allocations that do not sum to Total.
	// Without it the creator absorbs whatever is not allocated.
	RequireExactCustom bool
}

// Allocation is one participant's computed share.
type Allocation struct {
	UserID string
	Amount decimal.Decimal
}

// Allocate computes each participant's owed amount.
//
// The creator never receives an Allocation. Under PolicyEven every participant
// owes Total/(N+1) rounded to cents, lowered to the floor when rounding up would
// allocate more than Total. The creator's share is the remainder, so rounding
// differences always land on the creator.
func Allocate(in AllocationInput) ([]Allocation, error) {
	if !in.Total.IsPositive() {
		return nil, errs.Validation("total must be greater than zero, got %s", in.Total)
	}
	if !IsWholeCents(in.Total) {
		return nil, errs.Validation("total %s has more than %d decimal places", in.Total, centPlaces)
	}

	participants := NormalizeParticipants(in.ParticipantIDs, in.CreatorID)
	if len(participants) == 0 {
		return nil, errs.Validation("at least one participant other than the creator is required")
	}

	switch in.Policy {
	case models.PolicyEven:
		return allocateEven(in.Total, participants), nil
	case models.PolicyCustom:
		return allocateCustom(in, participants)
	default:
		return nil, errs.Validation("unknown split policy %q", in.Policy)
	}
}

func allocateEven(total decimal.Decimal, participants []string) []Allocation {
	n := decimal.NewFromInt(int64(len(participants)))
	shares := n.Add(decimal.NewFromInt(1))

	share := total.Div(shares).Round(centPlaces)
	if share.Mul(n).GreaterThan(total) {
		share = total.Shift(centPlaces).Div(shares).Floor().Shift(-centPlaces)
	}

	allocations := make([]Allocation, len(participants))
	for i, p := range participants {
		allocations[i] = Allocation{UserID: p, Amount: share}
	}
	return allocations
}

func allocateCustom(in AllocationInput, participants []string) ([]Allocation, error) {
	isParticipant := make(map[string]bool, len(participants))
	for _, p := range participants {
		isParticipant[p] = true
	}
	for userID := range in.CustomAmounts {
		if userID == in.CreatorID {
			continue
		}
		if !isParticipant[userID] {
			return nil, errs.Validation("custom amount given for non-participant %s", userID)
		}
	}

	sum := decimal.Zero
	allocations := make([]Allocation, len(participants))
	for i, p := range participants {
		amount := in.CustomAmounts[p]
		if amount.IsNegative() {
			return nil, errs.Validation("custom amount for %s is negative", p)
		}
		if !IsWholeCents(amount) {
			return nil, errs.Validation("custom amount %s for %s has more than %d decimal places", amount, p, centPlaces)
		}
		allocations[i] = Allocation{UserID: p, Amount: amount}
		sum = sum.Add(amount)
	}

	if sum.GreaterThan(in.Total) {
		return nil, errs.Validation("custom amounts sum to %s, more than total %s", sum, in.Total)
	}
	if in.RequireExactCustom && !sum.Equal(in.Total) {
		return nil, errs.Validation("custom amounts sum to %s, want exactly %s", sum, in.Total)
	}
	return allocations, nil
}

// CreatorShare returns the creator's implicit share: total minus all allocations.
func CreatorShare(total decimal.Decimal, allocations []Allocation) decimal.Decimal {
	share := total
	for _, a := range allocations {
		share = share.Sub(a.Amount)
	}
	return share
}

// NormalizeParticipants de-duplicates ids in first-seen order, dropping blanks
// and the creator.
func NormalizeParticipants(ids []string, creatorID string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == creatorID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// IsWholeCents reports whether d has no precision below the minimal currency unit.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(centPlaces))
}
