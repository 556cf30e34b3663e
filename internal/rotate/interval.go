package rotate

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInterval is returned for interval strings that are neither
// a non-negative number of seconds nor a lo-hi range. The CLI maps it
// to a stable exit code, so malformed input is rejected once at
// startup rather than per iteration.
var ErrInvalidInterval = errors.New(`invalid interval format: use seconds ("60") or a range ("30-120")`)

// Interval is a rotation interval in seconds, either fixed (Lo == Hi)
// or an inclusive range to sample from.
type Interval struct {
	Lo int
	Hi int
}

// ParseInterval parses "60" into a fixed interval and "30-120" into an
// inclusive range. Negative bounds, inverted ranges, and anything
// non-numeric fail with ErrInvalidInterval.
func ParseInterval(s string) (Interval, error) {
	s = strings.TrimSpace(s)
	if lo, hi, isRange := strings.Cut(s, "-"); isRange {
		l, err := strconv.Atoi(lo)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
		}
		h, err := strconv.Atoi(hi)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
		}
		if l < 0 || h < l {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
		}
		return Interval{Lo: l, Hi: h}, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}
	return Interval{Lo: n, Hi: n}, nil
}

// Fixed reports whether the interval is a single value rather than a range.
func (i Interval) Fixed() bool {
	return i.Lo == i.Hi
}

// Next returns the duration to sleep before the next rotation. For a
// range it samples uniformly from [Lo, Hi] inclusive; each call is an
// independent sample.
func (i Interval) Next(rng *rand.Rand) time.Duration {
	secs := i.Lo
	if i.Hi > i.Lo {
		secs = i.Lo + rng.Intn(i.Hi-i.Lo+1)
	}
	return time.Duration(secs) * time.Second
}

// String renders the interval the way the user wrote it.
func (i Interval) String() string {
	if i.Fixed() {
		return strconv.Itoa(i.Lo)
	}
	return fmt.Sprintf("%d-%d", i.Lo, i.Hi)
}
