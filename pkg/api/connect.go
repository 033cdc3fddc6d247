package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	AuthServiceName   = "splitledger.v1.AuthService"
	FriendServiceName = "splitledger.v1.FriendService"
	GroupServiceName  = "splitledger.v1.GroupService"
	BillServiceName   = "splitledger.v1.BillService"
)

const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"
	AuthServiceUpdateProfileProcedure  = "/" + AuthServiceName + "/UpdateProfile"

	FriendServiceAddFriendProcedure   = "/" + FriendServiceName + "/AddFriend"
	FriendServiceListFriendsProcedure = "/" + FriendServiceName + "/ListFriends"

	GroupServiceCreateGroupProcedure = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure    = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure  = "/" + GroupServiceName + "/ListGroups"
	GroupServiceAddMembersProcedure  = "/" + GroupServiceName + "/AddMembers"
	GroupServiceDeleteGroupProcedure = "/" + GroupServiceName + "/DeleteGroup"

	BillServiceCreateBillProcedure   = "/" + BillServiceName + "/CreateBill"
	BillServicePreviewSplitProcedure = "/" + BillServiceName + "/PreviewSplit"
	BillServiceGetBillProcedure      = "/" + BillServiceName + "/GetBill"
	BillServiceListBillsProcedure    = "/" + BillServiceName + "/ListBills"
	BillServiceMarkPaidProcedure     = "/" + BillServiceName + "/MarkPaid"
	BillServiceGetBalancesProcedure  = "/" + BillServiceName + "/GetBalances"
	BillServiceGetHistoryProcedure   = "/" + BillServiceName + "/GetHistory"
	BillServiceGetDashboardProcedure = "/" + BillServiceName + "/GetDashboard"
)

// IsLedgerProcedure reports whether path belongs to one of the splitledger.v1 services.
func IsLedgerProcedure(path string) bool {
	return strings.HasPrefix(path, "/splitledger.v1.")
}

type (
	Empty = emptypb.Empty

	AuthServiceHandler interface {
		Register(context.Context, *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error)
		Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error)
		GetCurrentUser(context.Context, *connect.Request[Empty]) (*connect.Response[UserResponse], error)
		UpdateProfile(context.Context, *connect.Request[UpdateProfileRequest]) (*connect.Response[UserResponse], error)
	}

	FriendServiceHandler interface {
		AddFriend(context.Context, *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error)
		ListFriends(context.Context, *connect.Request[Empty]) (*connect.Response[ListFriendsResponse], error)
	}

	GroupServiceHandler interface {
		CreateGroup(context.Context, *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error)
		GetGroup(context.Context, *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error)
		ListGroups(context.Context, *connect.Request[Empty]) (*connect.Response[ListGroupsResponse], error)
		AddMembers(context.Context, *connect.Request[AddMembersRequest]) (*connect.Response[GroupResponse], error)
		DeleteGroup(context.Context, *connect.Request[DeleteGroupRequest]) (*connect.Response[Empty], error)
	}

	BillServiceHandler interface {
		CreateBill(context.Context, *connect.Request[CreateBillRequest]) (*connect.Response[BillResponse], error)
		PreviewSplit(context.Context, *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error)
		GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[BillResponse], error)
		ListBills(context.Context, *connect.Request[Empty]) (*connect.Response[ListBillsResponse], error)
		MarkPaid(context.Context, *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error)
		GetBalances(context.Context, *connect.Request[Empty]) (*connect.Response[BalancesResponse], error)
		GetHistory(context.Context, *connect.Request[GetHistoryRequest]) (*connect.Response[HistoryResponse], error)
		GetDashboard(context.Context, *connect.Request[GetDashboardRequest]) (*connect.Response[DashboardResponse], error)
	}
)

// router mounts unary handlers for one service.
type router struct {
	mux  *http.ServeMux
	opts []connect.HandlerOption
}

func newRouter(opts []connect.HandlerOption) *router {
	return &router{
		mux:  http.NewServeMux(),
		opts: append(handlerCodecs(), opts...),
	}
}

func handle[Req, Res any](r *router, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	r.mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, r.opts...))
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	r := newRouter(opts)
	handle(r, AuthServiceRegisterProcedure, svc.Register)
	handle(r, AuthServiceLoginProcedure, svc.Login)
	handle(r, AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser)
	handle(r, AuthServiceUpdateProfileProcedure, svc.UpdateProfile)
	return "/" + AuthServiceName + "/", r.mux
}

// NewFriendServiceHandler builds an HTTP handler from the service implementation.
func NewFriendServiceHandler(svc FriendServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	r := newRouter(opts)
	handle(r, FriendServiceAddFriendProcedure, svc.AddFriend)
	handle(r, FriendServiceListFriendsProcedure, svc.ListFriends)
	return "/" + FriendServiceName + "/", r.mux
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	r := newRouter(opts)
	handle(r, GroupServiceCreateGroupProcedure, svc.CreateGroup)
	handle(r, GroupServiceGetGroupProcedure, svc.GetGroup)
	handle(r, GroupServiceListGroupsProcedure, svc.ListGroups)
	handle(r, GroupServiceAddMembersProcedure, svc.AddMembers)
	handle(r, GroupServiceDeleteGroupProcedure, svc.DeleteGroup)
	return "/" + GroupServiceName + "/", r.mux
}

// NewBillServiceHandler builds an HTTP handler from the service implementation.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	r := newRouter(opts)
	handle(r, BillServiceCreateBillProcedure, svc.CreateBill)
	handle(r, BillServicePreviewSplitProcedure, svc.PreviewSplit)
	handle(r, BillServiceGetBillProcedure, svc.GetBill)
	handle(r, BillServiceListBillsProcedure, svc.ListBills)
	handle(r, BillServiceMarkPaidProcedure, svc.MarkPaid)
	handle(r, BillServiceGetBalancesProcedure, svc.GetBalances)
	handle(r, BillServiceGetHistoryProcedure, svc.GetHistory)
	handle(r, BillServiceGetDashboardProcedure, svc.GetDashboard)
	return "/" + BillServiceName + "/", r.mux
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{clientCodec()}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// AuthServiceClient calls splitledger.v1.AuthService.
type AuthServiceClient struct {
	register       *connect.Client[RegisterRequest, AuthResponse]
	login          *connect.Client[LoginRequest, AuthResponse]
	getCurrentUser *connect.Client[Empty, UserResponse]
	updateProfile  *connect.Client[UpdateProfileRequest, UserResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       newClient[RegisterRequest, AuthResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[LoginRequest, AuthResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		getCurrentUser: newClient[Empty, UserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
		updateProfile:  newClient[UpdateProfileRequest, UserResponse](httpClient, baseURL, AuthServiceUpdateProfileProcedure, opts),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[UserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

func (c *AuthServiceClient) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[UserResponse], error) {
	return c.updateProfile.CallUnary(ctx, req)
}

// FriendServiceClient calls splitledger.v1.FriendService.
type FriendServiceClient struct {
	addFriend   *connect.Client[AddFriendRequest, AddFriendResponse]
	listFriends *connect.Client[Empty, ListFriendsResponse]
}

func NewFriendServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *FriendServiceClient {
	return &FriendServiceClient{
		addFriend:   newClient[AddFriendRequest, AddFriendResponse](httpClient, baseURL, FriendServiceAddFriendProcedure, opts),
		listFriends: newClient[Empty, ListFriendsResponse](httpClient, baseURL, FriendServiceListFriendsProcedure, opts),
	}
}

func (c *FriendServiceClient) AddFriend(ctx context.Context, req *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error) {
	return c.addFriend.CallUnary(ctx, req)
}

func (c *FriendServiceClient) ListFriends(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListFriendsResponse], error) {
	return c.listFriends.CallUnary(ctx, req)
}

// GroupServiceClient calls splitledger.v1.GroupService.
type GroupServiceClient struct {
	createGroup *connect.Client[CreateGroupRequest, GroupResponse]
	getGroup    *connect.Client[GetGroupRequest, GroupResponse]
	listGroups  *connect.Client[Empty, ListGroupsResponse]
	addMembers  *connect.Client[AddMembersRequest, GroupResponse]
	deleteGroup *connect.Client[DeleteGroupRequest, Empty]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup: newClient[CreateGroupRequest, GroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:    newClient[GetGroupRequest, GroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		listGroups:  newClient[Empty, ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		addMembers:  newClient[AddMembersRequest, GroupResponse](httpClient, baseURL, GroupServiceAddMembersProcedure, opts),
		deleteGroup: newClient[DeleteGroupRequest, Empty](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[CreateGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[GetGroupRequest]) (*connect.Response[GroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddMembers(ctx context.Context, req *connect.Request[AddMembersRequest]) (*connect.Response[GroupResponse], error) {
	return c.addMembers.CallUnary(ctx, req)
}

func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[DeleteGroupRequest]) (*connect.Response[Empty], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// BillServiceClient calls splitledger.v1.BillService.
type BillServiceClient struct {
	createBill   *connect.Client[CreateBillRequest, BillResponse]
	previewSplit *connect.Client[PreviewSplitRequest, PreviewSplitResponse]
	getBill      *connect.Client[GetBillRequest, BillResponse]
	listBills    *connect.Client[Empty, ListBillsResponse]
	markPaid     *connect.Client[MarkPaidRequest, MarkPaidResponse]
	getBalances  *connect.Client[Empty, BalancesResponse]
	getHistory   *connect.Client[GetHistoryRequest, HistoryResponse]
	getDashboard *connect.Client[GetDashboardRequest, DashboardResponse]
}

func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	return &BillServiceClient{
		createBill:   newClient[CreateBillRequest, BillResponse](httpClient, baseURL, BillServiceCreateBillProcedure, opts),
		previewSplit: newClient[PreviewSplitRequest, PreviewSplitResponse](httpClient, baseURL, BillServicePreviewSplitProcedure, opts),
		getBill:      newClient[GetBillRequest, BillResponse](httpClient, baseURL, BillServiceGetBillProcedure, opts),
		listBills:    newClient[Empty, ListBillsResponse](httpClient, baseURL, BillServiceListBillsProcedure, opts),
		markPaid:     newClient[MarkPaidRequest, MarkPaidResponse](httpClient, baseURL, BillServiceMarkPaidProcedure, opts),
		getBalances:  newClient[Empty, BalancesResponse](httpClient, baseURL, BillServiceGetBalancesProcedure, opts),
		getHistory:   newClient[GetHistoryRequest, HistoryResponse](httpClient, baseURL, BillServiceGetHistoryProcedure, opts),
		getDashboard: newClient[GetDashboardRequest, DashboardResponse](httpClient, baseURL, BillServiceGetDashboardProcedure, opts),
	}
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[BillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) PreviewSplit(ctx context.Context, req *connect.Request[PreviewSplitRequest]) (*connect.Response[PreviewSplitResponse], error) {
	return c.previewSplit.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[BillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) MarkPaid(ctx context.Context, req *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBalances(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[BalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetHistory(ctx context.Context, req *connect.Request[GetHistoryRequest]) (*connect.Response[HistoryResponse], error) {
	return c.getHistory.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetDashboard(ctx context.Context, req *connect.Request[GetDashboardRequest]) (*connect.Response[DashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}
