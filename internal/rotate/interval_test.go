package rotate

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

// TestParseInterval tests interval string parsing.
func TestParseInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Interval
		wantErr bool
	}{
		{name: "fixed value", input: "60", want: Interval{Lo: 60, Hi: 60}},
		{name: "fixed zero", input: "0", want: Interval{Lo: 0, Hi: 0}},
		{name: "range", input: "30-120", want: Interval{Lo: 30, Hi: 120}},
		{name: "degenerate range", input: "45-45", want: Interval{Lo: 45, Hi: 45}},
		{name: "surrounding whitespace", input: " 60 ", want: Interval{Lo: 60, Hi: 60}},
		{name: "letters", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "half range", input: "30-", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "inverted range", input: "120-30", wantErr: true},
		{name: "range with junk", input: "30-abc", wantErr: true},
		{name: "float", input: "1.5", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseInterval(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInterval) {
					t.Errorf("expected ErrInvalidInterval, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseInterval(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// TestIntervalNext tests interval sampling bounds.
func TestIntervalNext(t *testing.T) {
	t.Parallel()

	t.Run("fixed interval always returns the same duration", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic test source
		interval := Interval{Lo: 60, Hi: 60}
		for i := 0; i < 100; i++ {
			if got := interval.Next(rng); got != 60*time.Second {
				t.Fatalf("expected 60s, got %v", got)
			}
		}
	})

	t.Run("range sampling stays inside bounds across 10000 samples", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic test source
		interval := Interval{Lo: 30, Hi: 120}
		sawLo, sawHi := false, false
		for i := 0; i < 10000; i++ {
			secs := int(interval.Next(rng) / time.Second)
			if secs < 30 || secs > 120 {
				t.Fatalf("sample %d outside [30,120]: %d", i, secs)
			}
			if secs == 30 {
				sawLo = true
			}
			if secs == 120 {
				sawHi = true
			}
		}
		// Both endpoints are inclusive; 10000 uniform samples over 91
		// values hit each endpoint with overwhelming probability.
		if !sawLo || !sawHi {
			t.Errorf("expected both endpoints to appear (lo=%v hi=%v)", sawLo, sawHi)
		}
	})
}

// TestIntervalString tests the user-facing rendering.
func TestIntervalString(t *testing.T) {
	t.Parallel()

	if got := (Interval{Lo: 60, Hi: 60}).String(); got != "60" {
		t.Errorf("expected \"60\", got %q", got)
	}
	if got := (Interval{Lo: 30, Hi: 120}).String(); got != "30-120" {
		t.Errorf("expected \"30-120\", got %q", got)
	}
}
