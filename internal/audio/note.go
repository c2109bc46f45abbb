package audio

import "math"

const (
	// ReferenceNote is the MIDI pitch anchoring the equal-tempered
	// mapping (69 = A4).
	ReferenceNote = 69

	// BaseFrequency is the frequency of ReferenceNote in Hz.
	BaseFrequency = 440.0

	// MaxVelocity is the nominal top of the velocity range.
	MaxVelocity = 127

	// DecayFloor is the fraction of the initial amplitude an envelope
	// reaches at the end of a note. Strictly positive: exponential ramps
	// toward literal zero are a log-domain error, and a hard cut clicks.
	DecayFloor = 1e-4
)

// NoteFrequency maps a MIDI-style pitch to its equal-tempered frequency.
func NoteFrequency(pitch int) float64 {
	return BaseFrequency * math.Pow(2, float64(pitch-ReferenceNote)/12)
}

// VelocityAmplitude maps a velocity to a linear amplitude, clamped to
// [0, 1] for inputs outside the nominal 0-127 range.
func VelocityAmplitude(velocity int) float64 {
	amp := float64(velocity) / MaxVelocity
	if amp < 0 {
		return 0
	}
	if amp > 1 {
		return 1
	}
	return amp
}
