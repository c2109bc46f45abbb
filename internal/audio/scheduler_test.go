package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/audiospy/sonifier/internal/model"
)

// fakeSink records Play calls at a fixed clock position.
type fakeSink struct {
	now   float64
	calls [][]Tone
}

func (f *fakeSink) Now() float64      { return f.now }
func (f *fakeSink) Play(tones []Tone) { f.calls = append(f.calls, tones) }

type fakeGate struct{ playing bool }

func (f *fakeGate) Playing() bool { return f.playing }

func TestScheduler_GateClosedDiscards(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(sink, &fakeGate{playing: false}, nil)

	err := s.Schedule(model.AudioEvent{
		Notes:    []model.Note{{Pitch: 60, Velocity: 100}},
		Duration: 0.5,
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("gate closed but %d Play calls reached the sink", len(sink.calls))
	}
}

func TestScheduler_SchedulesTones(t *testing.T) {
	sink := &fakeSink{now: 2.5}
	s := NewScheduler(sink, &fakeGate{playing: true}, nil)

	err := s.Schedule(model.AudioEvent{
		Notes:    []model.Note{{Pitch: 60, Velocity: 100}},
		Duration: 0.5,
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("Play calls = %d, want 1", len(sink.calls))
	}
	tones := sink.calls[0]
	if len(tones) != 1 {
		t.Fatalf("tones = %d, want 1", len(tones))
	}

	tone := tones[0]
	if math.Abs(tone.Frequency-261.63) > 0.01 {
		t.Errorf("Frequency = %.4f, want 261.63", tone.Frequency)
	}
	if math.Abs(tone.Amplitude-100.0/127.0) > 1e-9 {
		t.Errorf("Amplitude = %v, want %v", tone.Amplitude, 100.0/127.0)
	}
	if tone.Start != 2.5 {
		t.Errorf("Start = %v, want 2.5", tone.Start)
	}
	if tone.End != 3.0 {
		t.Errorf("End = %v, want 3.0", tone.End)
	}
}

func TestScheduler_ChordAnchoredInUnison(t *testing.T) {
	sink := &fakeSink{now: 1.0}
	s := NewScheduler(sink, &fakeGate{playing: true}, nil)

	err := s.Schedule(model.AudioEvent{
		Notes: []model.Note{
			{Pitch: 60, Velocity: 100},
			{Pitch: 64, Velocity: 80},
			{Pitch: 67, Velocity: 80},
		},
		Duration: 0.25,
	})
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}

	if len(sink.calls) != 1 {
		t.Fatalf("Play calls = %d, want exactly 1 for the whole chord", len(sink.calls))
	}
	for i, tone := range sink.calls[0] {
		if tone.Start != 1.0 || tone.End != 1.25 {
			t.Errorf("tone %d anchored at [%v, %v], want [1.0, 1.25]", i, tone.Start, tone.End)
		}
	}
}

func TestScheduler_InvalidDuration(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(sink, &fakeGate{playing: true}, nil)

	for _, d := range []float64{0, -0.5} {
		err := s.Schedule(model.AudioEvent{
			Notes:    []model.Note{{Pitch: 60, Velocity: 100}},
			Duration: d,
		})
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Schedule(duration=%v) = %v, want ErrInvalidDuration", d, err)
		}
	}
	if len(sink.calls) != 0 {
		t.Error("invalid events must not reach the sink")
	}
}

func TestScheduler_EmptyNotesNoOp(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(sink, &fakeGate{playing: true}, nil)

	if err := s.Schedule(model.AudioEvent{Duration: 0.5}); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(sink.calls) != 0 {
		t.Errorf("empty event produced %d Play calls, want 0", len(sink.calls))
	}
}
