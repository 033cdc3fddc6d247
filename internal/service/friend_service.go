package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
)

var _ api.FriendServiceHandler = (*FriendService)(nil)

// FriendService implements the Connect FriendService.
type FriendService struct {
	ledger *ledger.Ledger
}

// NewFriendService creates a new FriendService.
func NewFriendService(l *ledger.Ledger) *FriendService {
	return &FriendService{ledger: l}
}

// AddFriend links the caller with the user owning the given handle.
func (s *FriendService) AddFriend(ctx context.Context, req *connect.Request[api.AddFriendRequest]) (*connect.Response[api.AddFriendResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddFriend request received", "user_id", userID, "handle", req.Msg.Handle)

	friend, err := s.ledger.AddFriend(ctx, userID, req.Msg.Handle)
	if err != nil {
		slog.Warn("AddFriend failed", "user_id", userID, "handle", req.Msg.Handle, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Friend added", "user_id", userID, "friend_id", friend.ID)
	return connect.NewResponse(&api.AddFriendResponse{Friend: toAPIProfile(*friend)}), nil
}

// ListFriends returns the caller's friends.
func (s *FriendService) ListFriends(ctx context.Context, req *connect.Request[api.Empty]) (*connect.Response[api.ListFriendsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	friends, err := s.ledger.ListFriends(ctx, userID)
	if err != nil {
		slog.Error("ListFriends failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("ListFriends successful", "user_id", userID, "count", len(friends))
	return connect.NewResponse(&api.ListFriendsResponse{Friends: toAPIProfiles(friends)}), nil
}
