package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain error", errors.New("boom"), nil},
		{"validation helper", Validation("amount %s", "-1"), ErrValidation},
		{"not found helper", NotFound("bill", "b1"), ErrNotFound},
		{"forbidden helper", Forbidden("not creator"), ErrForbidden},
		{"double wrapped", fmt.Errorf("create bill: %w", NotFound("user", "u1")), ErrNotFound},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ErrStoreUnavailable},
		{"conflict", fmt.Errorf("%w: busy", ErrConflict), ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
