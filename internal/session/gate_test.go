package session

import (
	"testing"
	"time"
)

func TestGate_NotEnforcingAlwaysOpen(t *testing.T) {
	g := NewGate("xnys", false, nil)

	// Saturday midnight is as closed as markets get.
	saturday := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	if !g.Open(saturday) {
		t.Error("non-enforcing gate should always be open")
	}
}

func TestGate_FallbackHours(t *testing.T) {
	// An unknown MIC drops to the Mon-Fri 09:30-16:00 New York fallback.
	g := NewGate("no-such-mic", true, nil)

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"weekday midday", time.Date(2026, 8, 19, 12, 0, 0, 0, ny), true},
		{"weekday open bell", time.Date(2026, 8, 19, 9, 30, 0, 0, ny), true},
		{"weekday before open", time.Date(2026, 8, 19, 9, 29, 0, 0, ny), false},
		{"weekday after close", time.Date(2026, 8, 19, 16, 0, 0, 0, ny), false},
		{"saturday", time.Date(2026, 8, 22, 12, 0, 0, 0, ny), false},
		{"sunday", time.Date(2026, 8, 23, 12, 0, 0, 0, ny), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Open(tt.at); got != tt.want {
				t.Errorf("Open(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestGate_ExchangeCalendar(t *testing.T) {
	g := NewGate("xnys", true, nil)

	// A regular Wednesday at noon New York time.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	if !g.Open(time.Date(2026, 8, 19, 12, 0, 0, 0, ny)) {
		t.Error("NYSE should be open on a regular weekday at noon")
	}
	if g.Open(time.Date(2026, 8, 22, 12, 0, 0, 0, ny)) {
		t.Error("NYSE should be closed on Saturday")
	}
}
