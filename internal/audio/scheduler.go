package audio

import (
	"errors"
	"log/slog"

	"github.com/audiospy/sonifier/internal/metrics"
	"github.com/audiospy/sonifier/internal/model"
)

// ErrInvalidDuration rejects events whose duration is not positive.
var ErrInvalidDuration = errors.New("audio event duration must be positive")

// Gate reports whether playback is currently enabled. The playback
// controller satisfies this.
type Gate interface {
	Playing() bool
}

// Sink receives fully resolved tones anchored on the audio clock. The
// synth engine satisfies this; tests substitute a recorder.
type Sink interface {
	// Now is the current instant on the monotonic audio clock, seconds.
	Now() float64

	// Play makes all tones audible as one unit.
	Play(tones []Tone)
}

// Scheduler converts audio events into tones. It enforces two
// invariants: nothing is ever scheduled while the gate is closed
// (events are discarded, not buffered), and an event is scheduled fully
// or not at all.
type Scheduler struct {
	sink   Sink
	gate   Gate
	logger *slog.Logger
}

// NewScheduler creates a scheduler over the given sink and gate.
func NewScheduler(sink Sink, gate Gate, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{sink: sink, gate: gate, logger: logger}
}

// Schedule fires one audio event.
//
// A non-positive duration is a parameter error, rejected at this
// boundary rather than coerced. An empty note list is a legal no-op.
// The clock is sampled exactly once per event; every note is anchored to
// that same instant, so the cluster starts in unison.
func (s *Scheduler) Schedule(ev model.AudioEvent) error {
	if ev.Duration <= 0 {
		return ErrInvalidDuration
	}

	if !s.gate.Playing() {
		metrics.EventsDiscarded.Inc()
		return nil
	}

	if len(ev.Notes) == 0 {
		return nil
	}

	now := s.sink.Now()

	tones := make([]Tone, 0, len(ev.Notes))
	for _, n := range ev.Notes {
		tones = append(tones, Tone{
			Frequency: NoteFrequency(n.Pitch),
			Amplitude: VelocityAmplitude(n.Velocity),
			Start:     now,
			End:       now + ev.Duration,
		})
	}

	s.sink.Play(tones)
	metrics.TonesScheduled.Add(float64(len(tones)))

	s.logger.Debug("scheduled audio event",
		"notes", len(tones),
		"duration", ev.Duration,
		"at", now,
	)
	return nil
}
