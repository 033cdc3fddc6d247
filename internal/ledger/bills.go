package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

const maxTitleLength = 200

// ItemInput is one line of a bill breakdown.
type ItemInput struct {
	Label string
	Cost  decimal.Decimal
}

// CreateBillInput describes a bill to record.
type CreateBillInput struct {
	Title       string
	Description string
	Total       decimal.Decimal

	// BillDate defaults to now.
	BillDate time.Time

	CreatorID string

	// GroupID optionally supplies participants when ParticipantIDs is empty.
	GroupID string

	ParticipantIDs []string

	// Policy defaults to even.
	Policy        models.SplitPolicy
	CustomAmounts map[string]decimal.Decimal

	Items []ItemInput
}

// CreateBill validates and allocates a bill, then stores it with its items
// and splits in one transaction.
func (l *Ledger) CreateBill(ctx context.Context, in CreateBillInput) (*models.Bill, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errs.Validation("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, errs.Validation("title is longer than %d characters", maxTitleLength)
	}
	if !in.Total.IsPositive() {
		return nil, errs.Validation("total must be greater than zero")
	}

	billID := uuid.New().String()
	items, err := buildItems(in.Items, in.Total)
	if err != nil {
		return nil, err
	}

	participants := in.ParticipantIDs
	if in.GroupID != "" {
		group, err := l.store.GetGroup(ctx, in.GroupID)
		if err != nil {
			return nil, storeErr(err)
		}
		if !group.HasMember(in.CreatorID) {
			return nil, errs.Forbidden("user %s is not a member of group %s", in.CreatorID, in.GroupID)
		}
		if len(participants) == 0 {
			participants = group.Members
		}
	}
	participants = calculator.NormalizeParticipants(participants, in.CreatorID)
	if err := l.requireUsers(ctx, participants); err != nil {
		return nil, storeErr(err)
	}

	policy := in.Policy
	if policy == "" {
		policy = models.PolicyEven
	}
	allocations, err := calculator.Allocate(calculator.AllocationInput{
		Total:              in.Total,
		CreatorID:          in.CreatorID,
		ParticipantIDs:     participants,
		Policy:             policy,
		CustomAmounts:      in.CustomAmounts,
		RequireExactCustom: l.strictCustom,
	})
	if err != nil {
		return nil, err
	}
	if calculator.CreatorShare(in.Total, allocations).IsNegative() {
		return nil, errs.Validation("splits exceed the bill total")
	}

	now := l.now()
	billDate := in.BillDate
	if billDate.IsZero() {
		billDate = now
	}

	bill := &models.Bill{
		ID:          billID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Total:       in.Total,
		CreatedBy:   in.CreatorID,
		GroupID:     in.GroupID,
		BillDate:    billDate.Unix(),
		CreatedAt:   now.Unix(),
		Items:       items,
		Splits:      make([]models.Split, len(allocations)),
	}
	for i, a := range allocations {
		bill.Splits[i] = models.Split{BillID: billID, UserID: a.UserID, Amount: a.Amount}
	}

	if err := l.store.CreateBill(ctx, bill); err != nil {
		return nil, storeErr(err)
	}

	l.publish(ctx, events.New(events.BillCreated, in.CreatorID, bill.ID, append([]string{in.CreatorID}, participants...)...))
	return bill, nil
}

// buildItems validates the breakdown. Zero-cost lines are dropped; the rest must
// sum to total.
func buildItems(inputs []ItemInput, total decimal.Decimal) ([]models.Item, error) {
	var items []models.Item
	sum := decimal.Zero
	for i, in := range inputs {
		label := strings.TrimSpace(in.Label)
		if label == "" {
			return nil, errs.Validation("item %d has no label", i+1)
		}
		if in.Cost.IsNegative() {
			return nil, errs.Validation("item %q has a negative cost", label)
		}
		if !calculator.IsWholeCents(in.Cost) {
			return nil, errs.Validation("item %q cost has more than two decimal places", label)
		}
		if in.Cost.IsZero() {
			continue
		}
		items = append(items, models.Item{ID: uuid.New().String(), Label: label, Cost: in.Cost})
		sum = sum.Add(in.Cost)
	}
	if len(items) == 0 {
		return nil, nil
	}
	if !sum.Equal(total) {
		return nil, errs.Validation("items sum to %s, want %s", sum.StringFixed(2), total.StringFixed(2))
	}
	return items, nil
}

// GetBill returns a bill visible to requesterID.
func (l *Ledger) GetBill(ctx context.Context, billID, requesterID string) (*models.Bill, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	bill, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !bill.IsVisibleTo(requesterID) {
		return nil, errs.Forbidden("bill %s is not shared with user %s", billID, requesterID)
	}
	return bill, nil
}

// ListBills returns the bills userID created or holds a split on, newest first.
func (l *Ledger) ListBills(ctx context.Context, userID string) ([]models.Bill, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	bills, err := l.store.ListBillsForUser(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	return bills, nil
}

// MarkPaid settles userID's split on billID. The debtor or the bill creator may
// act. Marking an already paid split succeeds without change; the bool reports
// whether this call performed the transition.
func (l *Ledger) MarkPaid(ctx context.Context, billID, userID, actingUserID string) (*models.Split, bool, error) {
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()

	bill, err := l.store.GetBill(ctx, billID)
	if err != nil {
		return nil, false, storeErr(err)
	}
	if _, ok := bill.SplitFor(userID); !ok {
		return nil, false, errs.NotFound("split", billID+"/"+userID)
	}
	if actingUserID != userID && actingUserID != bill.CreatedBy {
		return nil, false, errs.Forbidden("user %s cannot settle the split of %s", actingUserID, userID)
	}

	split, transitioned, err := l.store.MarkSplitPaid(ctx, billID, userID, actingUserID, l.now().Unix())
	if err != nil {
		return nil, false, storeErr(err)
	}

	if transitioned {
		l.publish(ctx, events.New(events.SplitPaid, actingUserID, billID, bill.CreatedBy, userID))
	}
	return split, transitioned, nil
}

// PreviewSplit allocates a total without storing anything, so callers can show
// the shares before creating the bill.
func (l *Ledger) PreviewSplit(creatorID string, total decimal.Decimal, participantIDs []string, policy models.SplitPolicy, customAmounts map[string]decimal.Decimal) ([]calculator.Allocation, error) {
	if policy == "" {
		policy = models.PolicyEven
	}
	return calculator.Allocate(calculator.AllocationInput{
		Total:              total,
		CreatorID:          creatorID,
		ParticipantIDs:     participantIDs,
		Policy:             policy,
		CustomAmounts:      customAmounts,
		RequireExactCustom: l.strictCustom,
	})
}
