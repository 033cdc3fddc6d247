package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/errs"
	"github.com/mmynk/splitledger/internal/middleware"
)

// toConnectError maps ledger and auth failures to Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(codeFor(err), err)
}

func codeFor(err error) connect.Code {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return connect.CodeUnauthenticated
	case errors.Is(err, auth.ErrEmailExists), errors.Is(err, auth.ErrHandleTaken):
		return connect.CodeAlreadyExists
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		return connect.CodeInvalidArgument
	}

	switch errs.Kind(err) {
	case errs.ErrValidation, errs.ErrSelfReference:
		return connect.CodeInvalidArgument
	case errs.ErrNotFound:
		return connect.CodeNotFound
	case errs.ErrForbidden:
		return connect.CodePermissionDenied
	case errs.ErrAlreadyLinked:
		return connect.CodeAlreadyExists
	case errs.ErrConflict:
		return connect.CodeAborted
	case errs.ErrStoreUnavailable:
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}

// requireUser returns the authenticated caller set by the auth interceptor.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
