package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/safe-acid/tornet/internal/probe"
	"github.com/safe-acid/tornet/internal/rotate"
	"github.com/safe-acid/tornet/internal/service"
	"github.com/safe-acid/tornet/internal/torrc"
)

// TestFromError tests the error-to-exit-code contract.
// The code values themselves are asserted literally because they must
// stay stable across releases for scripting compatibility.
func TestFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil is success", err: nil, want: 0},
		{name: "generic error", err: errors.New("boom"), want: 1},
		{name: "privilege required", err: service.ErrPrivilegeRequired, want: 2},
		{name: "no service manager", err: service.ErrNoServiceManager, want: 3},
		{name: "invalid interval", err: rotate.ErrInvalidInterval, want: 8},
		{name: "no connectivity", err: probe.ErrNoConnectivity, want: 9},
		{name: "tor not installed", err: ErrTorNotInstalled, want: 10},
		{name: "torrc not found", err: torrc.ErrConfigNotFound, want: 20},
		{name: "torrc read failed", err: torrc.ErrConfigRead, want: 22},
		{name: "torrc write failed", err: torrc.ErrConfigWrite, want: 23},
		{
			name: "wrapped sentinel still maps",
			err:  fmt.Errorf("while applying policy: %w", torrc.ErrConfigWrite),
			want: 23,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FromError(tt.err); got != tt.want {
				t.Errorf("FromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
