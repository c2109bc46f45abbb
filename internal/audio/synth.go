package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// Tone is one fully resolved voice: frequency, starting amplitude, and
// start/end instants on the audio clock (seconds).
type Tone struct {
	Frequency float64
	Amplitude float64
	Start     float64
	End       float64
}

// voice is a Tone with its decay rate precomputed.
type voice struct {
	Tone
	decayRate float64 // per second, so env(End) = Amplitude * DecayFloor
}

// Engine is an additive sine synthesizer. It renders little-endian int16
// mono PCM through Read; the audio output (or a pump, when running
// headless) pulls from it at the device rate.
type Engine struct {
	sampleRate int

	mu      sync.Mutex
	voices  []voice
	head    int64 // frames rendered since start; the audio clock
	capture []int16
	capOn   bool
}

// NewEngine creates an engine rendering at the given sample rate.
func NewEngine(sampleRate int) *Engine {
	return &Engine{sampleRate: sampleRate}
}

// SampleRate returns the render rate in Hz.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Now returns the instant at the current render head, in seconds on the
// monotonic audio clock. Wall-clock time never enters scheduling.
func (e *Engine) Now() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return float64(e.head) / float64(e.sampleRate)
}

// Play adds all tones under one lock acquisition: either every note of
// an event becomes audible or none does.
func (e *Engine) Play(tones []Tone) {
	if len(tones) == 0 {
		return
	}

	vs := make([]voice, 0, len(tones))
	for _, t := range tones {
		d := t.End - t.Start
		if d <= 0 || t.Amplitude <= 0 {
			continue
		}
		vs = append(vs, voice{
			Tone:      t,
			decayRate: math.Log(1/DecayFloor) / d,
		})
	}

	e.mu.Lock()
	e.voices = append(e.voices, vs...)
	e.mu.Unlock()
}

// ActiveVoices returns the number of voices not yet past their end.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voices)
}

// EnableCapture starts accumulating rendered samples for WAV export.
// Capture is unbounded; it is meant for a bounded listening session.
func (e *Engine) EnableCapture() {
	e.mu.Lock()
	e.capOn = true
	e.mu.Unlock()
}

// Captured returns a copy of the samples rendered since EnableCapture.
func (e *Engine) Captured() []int16 {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]int16, len(e.capture))
	copy(out, e.capture)
	return out
}

// Read renders the next chunk of PCM. It always fills p (silence when no
// voice is active) so the clock keeps advancing at the device rate.
func (e *Engine) Read(p []byte) (int, error) {
	frames := len(p) / 2
	if frames == 0 {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := 0; i < frames; i++ {
		t := float64(e.head) / float64(e.sampleRate)

		var sample float64
		for idx := range e.voices {
			v := &e.voices[idx]
			if t < v.Start || t >= v.End {
				continue
			}
			dt := t - v.Start
			env := v.Amplitude * math.Exp(-v.decayRate*dt)
			sample += env * math.Sin(2*math.Pi*v.Frequency*dt)
		}

		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}

		s := int16(sample * math.MaxInt16)
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s))
		if e.capOn {
			e.capture = append(e.capture, s)
		}
		e.head++
	}

	e.dropFinishedLocked()
	return frames * 2, nil
}

// dropFinishedLocked removes voices whose end is behind the render head.
func (e *Engine) dropFinishedLocked() {
	t := float64(e.head) / float64(e.sampleRate)
	live := e.voices[:0]
	for _, v := range e.voices {
		if v.End > t {
			live = append(live, v)
		}
	}
	e.voices = live
}
