package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService.
type GroupService struct {
	ledger    *ledger.Ledger
	presenter presenter
}

// NewGroupService creates a new GroupService.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l, presenter: presenter{directory: l.Directory()}}
}

// CreateGroup creates a new group owned by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"user_id", userID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.MemberIDs),
	)

	group, err := s.ledger.CreateGroup(ctx, userID, req.Msg.Name, req.Msg.MemberIDs)
	if err != nil {
		slog.Warn("CreateGroup failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.group(ctx, group)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.GroupResponse{Group: out}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := s.ledger.GetGroup(ctx, req.Msg.GroupID, userID)
	if err != nil {
		slog.Warn("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.group(ctx, group)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: out}), nil
}

// ListGroups retrieves every group the caller created or belongs to.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.ledger.ListGroups(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.groups(ctx, groups)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMembers adds users to a group the caller created.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.GroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.MemberIDs),
	)

	group, err := s.ledger.AddMembers(ctx, req.Msg.GroupID, userID, req.Msg.MemberIDs)
	if err != nil {
		slog.Warn("AddMembers failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.presenter.group(ctx, group)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GroupResponse{Group: out}), nil
}

// DeleteGroup removes a group the caller created.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.Empty], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if err := s.ledger.DeleteGroup(ctx, req.Msg.GroupID, userID); err != nil {
		slog.Warn("DeleteGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)
	return connect.NewResponse(&api.Empty{}), nil
}
