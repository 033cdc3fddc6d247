package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
)

type testClients struct {
	auth   *api.AuthServiceClient
	friend *api.FriendServiceClient
	group  *api.GroupServiceClient
	bill   *api.BillServiceClient
}

// setupTestServer serves all four services the way cmd/server wires them.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	l := ledger.New(store)

	public := connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor(logger))
	private := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor(logger))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, l.Directory(), logger), public))
	mux.Handle(api.NewFriendServiceHandler(NewFriendService(l), private))
	mux.Handle(api.NewGroupServiceHandler(NewGroupService(l), private))
	mux.Handle(api.NewBillServiceHandler(NewBillService(l), private))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return &testClients{
		auth:   api.NewAuthServiceClient(http.DefaultClient, server.URL),
		friend: api.NewFriendServiceClient(http.DefaultClient, server.URL),
		group:  api.NewGroupServiceClient(http.DefaultClient, server.URL),
		bill:   api.NewBillServiceClient(http.DefaultClient, server.URL),
	}
}

type session struct {
	user  api.User
	token string
}

func (c *testClients) register(t *testing.T, handle string) session {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       handle + "@example.com",
		Handle:      handle,
		DisplayName: "User " + handle,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", handle, err)
	}
	return session{user: resp.Msg.User, token: resp.Msg.Token}
}

func authed[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if connectErr.Code() != want {
		t.Errorf("expected code %v, got %v (%v)", want, connectErr.Code(), err)
	}
}

func TestAuthFlow(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	alice := c.register(t, "alice")
	if alice.token == "" {
		t.Fatal("expected token")
	}

	_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:    "other@example.com",
		Handle:   "alice",
		Password: "password123",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "ALICE@example.com", Password: "password123"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != alice.user.ID {
		t.Errorf("expected user %s, got %s", alice.user.ID, login.Msg.User.ID)
	}

	_, err = c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.Empty{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	updated, err := c.auth.UpdateProfile(ctx, authed(alice, &api.UpdateProfileRequest{DisplayName: "Alice A."}))
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Msg.User.DisplayName != "Alice A." {
		t.Errorf("expected display name 'Alice A.', got %q", updated.Msg.User.DisplayName)
	}

	me, err := c.auth.GetCurrentUser(ctx, authed(alice, &api.Empty{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.Handle != "alice" {
		t.Errorf("expected handle alice, got %q", me.Msg.User.Handle)
	}
}

func TestUnauthenticatedLedgerCalls(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	_, err := c.bill.ListBills(ctx, connect.NewRequest(&api.Empty{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = c.friend.ListFriends(ctx, connect.NewRequest(&api.Empty{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	bad := session{token: "not-a-jwt"}
	_, err = c.group.ListGroups(ctx, authed(bad, &api.Empty{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestFriends(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")

	resp, err := c.friend.AddFriend(ctx, authed(alice, &api.AddFriendRequest{Handle: "@Bob"}))
	if err != nil {
		t.Fatalf("AddFriend failed: %v", err)
	}
	if resp.Msg.Friend.ID != bob.user.ID {
		t.Errorf("expected friend %s, got %s", bob.user.ID, resp.Msg.Friend.ID)
	}

	_, err = c.friend.AddFriend(ctx, authed(bob, &api.AddFriendRequest{Handle: "alice"}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = c.friend.AddFriend(ctx, authed(alice, &api.AddFriendRequest{Handle: "alice"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = c.friend.AddFriend(ctx, authed(alice, &api.AddFriendRequest{Handle: "nobody"}))
	assertCode(t, err, connect.CodeNotFound)

	list, err := c.friend.ListFriends(ctx, authed(bob, &api.Empty{}))
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(list.Msg.Friends) != 1 || list.Msg.Friends[0].ID != alice.user.ID {
		t.Errorf("expected bob's only friend to be alice, got %+v", list.Msg.Friends)
	}
}

func TestGroupLifecycle(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")
	carol := c.register(t, "carol")

	created, err := c.group.CreateGroup(ctx, authed(alice, &api.CreateGroupRequest{
		Name:      "Roommates",
		MemberIDs: []string{bob.user.ID},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	group := created.Msg.Group
	if len(group.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(group.Members))
	}
	if group.Members[0].DisplayName != "User alice" {
		t.Errorf("expected creator first with display name, got %+v", group.Members[0])
	}

	_, err = c.group.GetGroup(ctx, authed(carol, &api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	added, err := c.group.AddMembers(ctx, authed(alice, &api.AddMembersRequest{GroupID: group.ID, MemberIDs: []string{carol.user.ID}}))
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if len(added.Msg.Group.Members) != 3 {
		t.Errorf("expected 3 members, got %d", len(added.Msg.Group.Members))
	}

	list, err := c.group.ListGroups(ctx, authed(carol, &api.Empty{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 1 {
		t.Errorf("expected carol to see 1 group, got %d", len(list.Msg.Groups))
	}

	_, err = c.group.DeleteGroup(ctx, authed(bob, &api.DeleteGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	if _, err := c.group.DeleteGroup(ctx, authed(alice, &api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	_, err = c.group.GetGroup(ctx, authed(alice, &api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestBillRoundTrip(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")
	carol := c.register(t, "carol")
	dave := c.register(t, "dave")

	created, err := c.bill.CreateBill(ctx, authed(alice, &api.CreateBillRequest{
		Title:          "Pizza",
		Total:          "30.00",
		ParticipantIDs: []string{bob.user.ID, carol.user.ID},
	}))
	if err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	bill := created.Msg.Bill
	if bill.CreatorShare != "10.00" {
		t.Errorf("expected creator share 10.00, got %s", bill.CreatorShare)
	}
	if len(bill.Splits) != 2 {
		t.Fatalf("expected 2 splits, got %d", len(bill.Splits))
	}
	for _, s := range bill.Splits {
		if s.Amount != "10.00" || s.Paid {
			t.Errorf("unexpected split %+v", s)
		}
	}

	balances, err := c.bill.GetBalances(ctx, authed(bob, &api.Empty{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	b := balances.Msg.Balances
	if b.TotalOwing != "10.00" || len(b.OwingTo) != 1 || b.OwingTo[0].UserID != alice.user.ID {
		t.Errorf("expected bob to owe alice 10.00, got %+v", b)
	}
	if b.OwingTo[0].DisplayName != "User alice" {
		t.Errorf("expected counterparty display name, got %q", b.OwingTo[0].DisplayName)
	}

	_, err = c.bill.GetBill(ctx, authed(dave, &api.GetBillRequest{BillID: bill.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = c.bill.MarkPaid(ctx, authed(carol, &api.MarkPaidRequest{BillID: bill.ID, UserID: bob.user.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	paid, err := c.bill.MarkPaid(ctx, authed(bob, &api.MarkPaidRequest{BillID: bill.ID}))
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if !paid.Msg.Transitioned || !paid.Msg.Split.Paid || paid.Msg.Split.PaidBy != bob.user.ID {
		t.Errorf("unexpected first MarkPaid response %+v", paid.Msg)
	}

	again, err := c.bill.MarkPaid(ctx, authed(alice, &api.MarkPaidRequest{BillID: bill.ID, UserID: bob.user.ID}))
	if err != nil {
		t.Fatalf("second MarkPaid failed: %v", err)
	}
	if again.Msg.Transitioned {
		t.Error("expected second MarkPaid to report no transition")
	}
	if again.Msg.Split.PaidAt != paid.Msg.Split.PaidAt {
		t.Errorf("expected PaidAt to stay %d, got %d", paid.Msg.Split.PaidAt, again.Msg.Split.PaidAt)
	}

	balances, err = c.bill.GetBalances(ctx, authed(alice, &api.Empty{}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	if balances.Msg.Balances.TotalOwed != "10.00" {
		t.Errorf("expected alice to be owed 10.00, got %s", balances.Msg.Balances.TotalOwed)
	}

	history, err := c.bill.GetHistory(ctx, authed(carol, &api.GetHistoryRequest{Status: "pending"}))
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history.Msg.Bills) != 1 || history.Msg.Stats.Total != 1 {
		t.Errorf("expected one pending bill, got %d bills, stats %+v", len(history.Msg.Bills), history.Msg.Stats)
	}

	_, err = c.bill.GetHistory(ctx, authed(carol, &api.GetHistoryRequest{Status: "bogus"}))
	assertCode(t, err, connect.CodeInvalidArgument)

	dash, err := c.bill.GetDashboard(ctx, authed(bob, &api.GetDashboardRequest{}))
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if dash.Msg.BillCount != 1 || len(dash.Msg.RecentBills) != 1 {
		t.Errorf("expected one bill on the dashboard, got %+v", dash.Msg)
	}
}

func TestCreateBillErrors(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")

	tests := []struct {
		name string
		req  *api.CreateBillRequest
		code connect.Code
	}{
		{
			name: "unparseable total",
			req:  &api.CreateBillRequest{Title: "Lunch", Total: "abc", ParticipantIDs: []string{bob.user.ID}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown policy",
			req:  &api.CreateBillRequest{Title: "Lunch", Total: "10", Policy: "weighted", ParticipantIDs: []string{bob.user.ID}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "blank title",
			req:  &api.CreateBillRequest{Title: "  ", Total: "10", ParticipantIDs: []string{bob.user.ID}},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "unknown participant",
			req:  &api.CreateBillRequest{Title: "Lunch", Total: "10", ParticipantIDs: []string{"missing"}},
			code: connect.CodeNotFound,
		},
		{
			name: "unknown group",
			req:  &api.CreateBillRequest{Title: "Lunch", Total: "10", GroupID: "missing"},
			code: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.bill.CreateBill(ctx, authed(alice, tt.req))
			assertCode(t, err, tt.code)
		})
	}

	_, err := c.bill.GetBill(ctx, authed(alice, &api.GetBillRequest{BillID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestPreviewSplit(t *testing.T) {
	c := setupTestServer(t)
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")
	carol := c.register(t, "carol")

	resp, err := c.bill.PreviewSplit(context.Background(), authed(alice, &api.PreviewSplitRequest{
		Total:          "10.00",
		ParticipantIDs: []string{bob.user.ID, carol.user.ID, alice.user.ID},
	}))
	if err != nil {
		t.Fatalf("PreviewSplit failed: %v", err)
	}
	if len(resp.Msg.Splits) != 2 {
		t.Fatalf("expected creator to be dropped from 2 splits, got %d", len(resp.Msg.Splits))
	}

	sum := decimal.RequireFromString(resp.Msg.CreatorShare)
	for _, s := range resp.Msg.Splits {
		sum = sum.Add(decimal.RequireFromString(s.Amount))
		if s.DisplayName == "" {
			t.Errorf("expected display name on split for %s", s.UserID)
		}
	}
	if !sum.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected shares to sum to 10.00, got %s", sum)
	}
}
