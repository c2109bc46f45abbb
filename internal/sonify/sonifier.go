// Package sonify maps a market snapshot to an audio event.
//
// The mapping is the fallback for frames that arrive without audio_info:
// price change drives the melody pitch, volume drives velocity, RSI adds
// a major or minor triad at extremes, and the Ichimoku leading lines add
// a harmony note above or below the melody.
package sonify

import (
	"github.com/audiospy/sonifier/internal/model"
)

const (
	// MinPitch and MaxPitch bound the melody (C4..C6).
	MinPitch = 60
	MaxPitch = 84

	// BeatDuration is a quarter note at 120 BPM, in seconds.
	BeatDuration = 0.25

	defaultVelocity = 60
)

// beatPattern scales BeatDuration per event for a varied rhythm.
var beatPattern = []float64{1, 0.5, 0.5, 0.5, 0.5, 1, 0.5, 0.5}

// Sonifier converts snapshots to audio events. It keeps a beat cursor,
// so it belongs to the single dispatch goroutine like everything else
// that mutates per-session state.
type Sonifier struct {
	beat int
}

// New creates a sonifier at the start of the beat pattern.
func New() *Sonifier {
	return &Sonifier{}
}

// Sonify derives one audio event from the snapshot and advances the
// beat. It is total: missing or malformed fields fall back to neutral
// values, and the worst case is the default single note.
func (s *Sonifier) Sonify(snap model.Snapshot) model.AudioEvent {
	duration := beatPattern[s.beat] * BeatDuration
	s.beat = (s.beat + 1) % len(beatPattern)

	open := floatField(snap, "open")
	closePrice := floatField(snap, "close")

	var priceChange float64
	if open != 0 {
		priceChange = (closePrice - open) / open
	}
	melody := mapToPitch(normalize(priceChange, -0.05, 0.05), MinPitch, MaxPitch)

	volume := floatField(snap, "volume")
	velocity := int(normalize(volume, 0, volume*2)*40) + defaultVelocity

	notes := []model.Note{{Pitch: melody, Velocity: velocity}}

	if rsi, ok := lookupFloat(snap, "rsi"); ok {
		chordVelocity := int(float64(velocity) * 0.7)
		switch {
		case rsi > 70: // major triad
			notes = append(notes,
				model.Note{Pitch: melody + 4, Velocity: chordVelocity},
				model.Note{Pitch: melody + 7, Velocity: chordVelocity},
			)
		case rsi < 30: // minor triad
			notes = append(notes,
				model.Note{Pitch: melody + 3, Velocity: chordVelocity},
				model.Note{Pitch: melody + 7, Velocity: chordVelocity},
			)
		}
	}

	fast, okFast := lookupFloat(snap, "ichimoku_cloud_leading_fast_line")
	slow, okSlow := lookupFloat(snap, "ichimoku_cloud_leading_slow_line")
	if okFast && okSlow {
		harmony := melody - 2
		if fast > slow {
			harmony = melody + 2
		}
		notes = append(notes, model.Note{
			Pitch:    harmony,
			Velocity: int(float64(velocity) * 0.6),
		})
	}

	return model.AudioEvent{Notes: notes, Duration: duration}
}

// normalize maps value into [0, 1] over [min, max]. A degenerate range
// yields 0.
func normalize(value, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return (value - min) / (max - min)
}

// mapToPitch maps a normalized value onto the pitch range.
func mapToPitch(normalized float64, min, max int) int {
	p := min + int(normalized*float64(max-min))
	if p < min {
		return min
	}
	if p > max {
		return max
	}
	return p
}

// floatField reads a numeric snapshot field, zero if absent or
// non-numeric.
func floatField(snap model.Snapshot, key string) float64 {
	v, _ := lookupFloat(snap, key)
	return v
}

func lookupFloat(snap model.Snapshot, key string) (float64, bool) {
	raw, ok := snap[key]
	if !ok || raw == nil {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
