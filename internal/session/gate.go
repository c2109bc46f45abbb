// Package session gates sonification to exchange trading hours.
package session

import (
	"log/slog"
	"time"

	"github.com/scmhub/calendar"
)

// Gate answers "is the market open right now" for one exchange calendar.
// With Enforce off it always answers yes, which is the default: the
// stream itself goes quiet outside trading hours, so the gate is a
// belt for feeds that keep emitting stale updates.
type Gate struct {
	cal      *calendar.Calendar
	loc      *time.Location
	enforce  bool
	fallback bool
}

// NewGate builds a gate for the given MIC (ISO 10383, e.g. "xnys"). An
// unknown MIC falls back to Mon-Fri 09:30-16:00 New York time.
func NewGate(mic string, enforce bool, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		logger.Warn("unknown exchange calendar, using weekday fallback", "mic", mic)
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		return &Gate{enforce: enforce, fallback: true, loc: loc}
	}

	return &Gate{cal: cal, loc: cal.Loc, enforce: enforce}
}

// Open reports whether the market is open at t. Always true when the
// gate is not enforcing.
func (g *Gate) Open(t time.Time) bool {
	if !g.enforce {
		return true
	}

	if g.loc != nil {
		t = t.In(g.loc)
	}

	if g.fallback {
		if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
			return false
		}
		h, m := t.Hour(), t.Minute()
		return (h > 9 || (h == 9 && m >= 30)) && h < 16
	}

	return g.cal.IsOpen(t)
}
