package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.BillServiceHandler = (*BillService)(nil)

// BillService implements the Connect BillService.
type BillService struct {
	ledger    *ledger.Ledger
	presenter presenter
}

// NewBillService creates a new BillService.
func NewBillService(l *ledger.Ledger) *BillService {
	return &BillService{ledger: l, presenter: presenter{directory: l.Directory()}}
}

// CreateBill records a bill paid by the caller and splits it across participants.
func (s *BillService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.BillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateBill request received",
		"user_id", userID,
		"title", req.Msg.Title,
		"total", req.Msg.Total,
		"participants_count", len(req.Msg.ParticipantIDs),
		"items_count", len(req.Msg.Items),
		"group_id", req.Msg.GroupID,
	)

	in, err := createBillInput(userID, req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill, err := s.ledger.CreateBill(ctx, in)
	if err != nil {
		slog.Warn("CreateBill failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.bill(ctx, bill)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Bill created", "bill_id", bill.ID, "total", out.Total, "creator_share", out.CreatorShare)
	return connect.NewResponse(&api.BillResponse{Bill: out}), nil
}

func createBillInput(userID string, msg *api.CreateBillRequest) (ledger.CreateBillInput, error) {
	total, err := parseMoney("total", msg.Total)
	if err != nil {
		return ledger.CreateBillInput{}, err
	}
	policy, err := parsePolicy(msg.Policy)
	if err != nil {
		return ledger.CreateBillInput{}, err
	}
	custom, err := parseCustomAmounts(msg.CustomAmounts)
	if err != nil {
		return ledger.CreateBillInput{}, err
	}

	items := make([]ledger.ItemInput, len(msg.Items))
	for i, item := range msg.Items {
		cost, err := parseMoney("item cost", item.Cost)
		if err != nil {
			return ledger.CreateBillInput{}, err
		}
		items[i] = ledger.ItemInput{Label: item.Label, Cost: cost}
	}

	var billDate time.Time
	if msg.BillDate > 0 {
		billDate = time.Unix(msg.BillDate, 0)
	}

	return ledger.CreateBillInput{
		Title:          msg.Title,
		Description:    msg.Description,
		Total:          total,
		BillDate:       billDate,
		CreatorID:      userID,
		GroupID:        msg.GroupID,
		ParticipantIDs: msg.ParticipantIDs,
		Policy:         policy,
		CustomAmounts:  custom,
		Items:          items,
	}, nil
}

// PreviewSplit computes the shares of a prospective bill without saving it.
func (s *BillService) PreviewSplit(ctx context.Context, req *connect.Request[api.PreviewSplitRequest]) (*connect.Response[api.PreviewSplitResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	total, err := parseMoney("total", req.Msg.Total)
	if err != nil {
		return nil, toConnectError(err)
	}
	policy, err := parsePolicy(req.Msg.Policy)
	if err != nil {
		return nil, toConnectError(err)
	}
	custom, err := parseCustomAmounts(req.Msg.CustomAmounts)
	if err != nil {
		return nil, toConnectError(err)
	}

	allocations, err := s.ledger.PreviewSplit(userID, total, req.Msg.ParticipantIDs, policy, custom)
	if err != nil {
		return nil, toConnectError(err)
	}

	ids := make([]string, len(allocations))
	for i, a := range allocations {
		ids[i] = a.UserID
	}
	profiles, err := s.ledger.Directory().Profiles(ctx, ids)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.PreviewSplitResponse{
		Splits:       make([]api.Split, len(allocations)),
		CreatorShare: money(calculator.CreatorShare(total, allocations)),
	}
	for i, a := range allocations {
		resp.Splits[i] = toAPISplit(models.Split{UserID: a.UserID, Amount: a.Amount}, profiles)
	}
	return connect.NewResponse(resp), nil
}

// GetBill retrieves a bill the caller created or holds a split on.
func (s *BillService) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.BillResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.ledger.GetBill(ctx, req.Msg.BillID, userID)
	if err != nil {
		slog.Warn("GetBill failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.bill(ctx, bill)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.BillResponse{Bill: out}), nil
}

// ListBills returns the caller's bills, newest first.
func (s *BillService) ListBills(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.ListBillsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	bills, err := s.ledger.ListBills(ctx, userID)
	if err != nil {
		slog.Error("ListBills failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.bills(ctx, bills)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("ListBills successful", "user_id", userID, "count", len(bills))
	return connect.NewResponse(&api.ListBillsResponse{Bills: out}), nil
}

// MarkPaid settles a split. The debtor or the bill creator may call it.
func (s *BillService) MarkPaid(ctx context.Context, req *connect.Request[api.MarkPaidRequest]) (*connect.Response[api.MarkPaidResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	debtorID := req.Msg.UserID
	if debtorID == "" {
		debtorID = userID
	}
	slog.Info("MarkPaid request received", "bill_id", req.Msg.BillID, "user_id", debtorID, "acting_user_id", userID)

	split, transitioned, err := s.ledger.MarkPaid(ctx, req.Msg.BillID, debtorID, userID)
	if err != nil {
		slog.Warn("MarkPaid failed", "bill_id", req.Msg.BillID, "error", err)
		return nil, toConnectError(err)
	}

	profiles, err := s.ledger.Directory().Profiles(ctx, []string{split.UserID})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("MarkPaid successful", "bill_id", req.Msg.BillID, "transitioned", transitioned)
	return connect.NewResponse(&api.MarkPaidResponse{
		Split:        toAPISplit(*split, profiles),
		Transitioned: transitioned,
	}), nil
}

// GetBalances returns what the caller is owed and owes.
func (s *BillService) GetBalances(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.BalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.ledger.ComputeBalances(ctx, userID)
	if err != nil {
		slog.Error("GetBalances failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.BalancesResponse{Balances: toAPIBalances(summary)}), nil
}

// GetHistory returns the caller's bills filtered by status and search text.
func (s *BillService) GetHistory(ctx context.Context, req *connect.Request[api.GetHistoryRequest]) (*connect.Response[api.HistoryResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	status, ok := calculator.ParseBillStatus(req.Msg.Status)
	if !ok {
		return nil, toConnectError(errs.Validation("unknown status %q", req.Msg.Status))
	}

	bills, stats, err := s.ledger.History(ctx, userID, calculator.BillFilter{Status: status, Search: req.Msg.Search})
	if err != nil {
		slog.Error("GetHistory failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.bills(ctx, bills)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.HistoryResponse{
		Bills: out,
		Stats: api.HistoryStats{
			Total:       stats.Total,
			Paid:        stats.Paid,
			Pending:     stats.Pending,
			TotalAmount: money(stats.TotalAmount),
		},
	}), nil
}

// GetDashboard returns balances, friends, groups and recent bills in one call.
func (s *BillService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.DashboardResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	dash, err := s.ledger.Dashboard(ctx, userID, req.Msg.Recent)
	if err != nil {
		slog.Error("GetDashboard failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	groups, err := s.presenter.groups(ctx, dash.Groups)
	if err != nil {
		return nil, toConnectError(err)
	}
	bills, err := s.presenter.bills(ctx, dash.RecentBills)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.DashboardResponse{
		Balances:    toAPIBalances(dash.Balances),
		Friends:     toAPIProfiles(dash.Friends),
		Groups:      groups,
		RecentBills: bills,
		BillCount:   dash.BillCount,
	}), nil
}
