package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/audiospy/sonifier/internal/audio"
	"github.com/audiospy/sonifier/internal/marketstate"
	"github.com/audiospy/sonifier/internal/model"
	"github.com/audiospy/sonifier/internal/playback"
	"github.com/audiospy/sonifier/internal/stream"
)

// fakeClient feeds frames and states from buffered channels and records
// Send calls.
type fakeClient struct {
	frames chan stream.Frame
	states chan stream.State

	mu   sync.Mutex
	sent []any
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		frames: make(chan stream.Frame, 16),
		states: make(chan stream.State, 16),
	}
}

func (f *fakeClient) Connect(ctx context.Context) error { return nil }
func (f *fakeClient) Close() error                      { return nil }
func (f *fakeClient) Frames() <-chan stream.Frame       { return f.frames }
func (f *fakeClient) States() <-chan stream.State       { return f.states }
func (f *fakeClient) State() stream.State               { return stream.StateConnected }
func (f *fakeClient) Stats() stream.Stats               { return stream.Stats{} }

func (f *fakeClient) Send(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// recordingSink collects Play calls and signals each arrival.
type recordingSink struct {
	mu     sync.Mutex
	calls  [][]audio.Tone
	notify chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{notify: make(chan struct{}, 16)}
}

func (r *recordingSink) Now() float64 { return 0 }

func (r *recordingSink) Play(tones []audio.Tone) {
	r.mu.Lock()
	r.calls = append(r.calls, tones)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *recordingSink) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingSink) lastCall() []audio.Tone {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

func (r *recordingSink) waitForPlay(t *testing.T) {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a Play call")
	}
}

type testHarness struct {
	client *fakeClient
	store  *marketstate.Store
	pb     *playback.Controller
	sink   *recordingSink
	engine *Engine
}

func newHarness(t *testing.T, cfg Config) *testHarness {
	t.Helper()

	client := newFakeClient()
	store := marketstate.NewStore()
	pb := playback.NewController(client, nil)
	sink := newRecordingSink()
	scheduler := audio.NewScheduler(sink, pb, nil)

	eng := New(cfg, client, store, pb, scheduler, nil, nil)
	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("engine Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		eng.Stop(ctx)
	})

	return &testHarness{client: client, store: store, pb: pb, sink: sink, engine: eng}
}

func marketFrame(delta model.Delta, ev *model.AudioEvent) stream.Frame {
	return stream.Frame{
		Type:       stream.TypeMarketUpdate,
		DeltaData:  delta,
		Event:      ev,
		ReceivedAt: time.Now(),
	}
}

func TestEngine_MergesAndSchedules(t *testing.T) {
	h := newHarness(t, Config{})
	h.pb.Start()

	h.client.frames <- marketFrame(model.Delta{"open": 100.0, "close": 101.0}, nil)
	h.sink.waitForPlay(t)

	snap := h.store.Latest()
	if snap["close"] != 101.0 {
		t.Errorf("snapshot close = %v, want 101.0", snap["close"])
	}
	if h.sink.callCount() != 1 {
		t.Errorf("Play calls = %d, want 1", h.sink.callCount())
	}
}

func TestEngine_StoppedDiscardsButStillMerges(t *testing.T) {
	h := newHarness(t, Config{})

	h.client.frames <- marketFrame(model.Delta{"close": 99.0}, nil)

	// The merge happens even though nothing is scheduled.
	deadline := time.After(2 * time.Second)
	for h.store.Latest()["close"] != 99.0 {
		select {
		case <-deadline:
			t.Fatal("delta never merged")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if h.sink.callCount() != 0 {
		t.Errorf("Play calls = %d, want 0 while stopped", h.sink.callCount())
	}
}

func TestEngine_ServerAudioInfoPreferred(t *testing.T) {
	h := newHarness(t, Config{})
	h.pb.Start()

	ev := &model.AudioEvent{
		Notes:    []model.Note{{Pitch: 69, Velocity: 127}},
		Duration: 0.5,
	}
	h.client.frames <- marketFrame(model.Delta{"close": 101.0}, ev)
	h.sink.waitForPlay(t)

	tones := h.sink.lastCall()
	if len(tones) != 1 {
		t.Fatalf("tones = %d, want 1", len(tones))
	}
	// Pitch 69 is the 440 Hz anchor; the fallback mapping would not
	// produce it from this snapshot.
	if tones[0].Frequency != 440.0 {
		t.Errorf("Frequency = %v, want 440 from the server-provided event", tones[0].Frequency)
	}
}

func TestEngine_FallsBackToSonifier(t *testing.T) {
	h := newHarness(t, Config{})
	h.pb.Start()

	h.client.frames <- marketFrame(model.Delta{"open": 100.0, "close": 100.0}, nil)
	h.sink.waitForPlay(t)

	if len(h.sink.lastCall()) == 0 {
		t.Error("fallback mapping produced no tones")
	}
}

func TestEngine_ReassertOnReconnect(t *testing.T) {
	h := newHarness(t, Config{ReassertOnReconnect: true})
	h.pb.Start()
	base := h.client.sentCount()

	h.client.states <- stream.StateConnected

	deadline := time.After(2 * time.Second)
	for h.client.sentCount() <= base {
		select {
		case <-deadline:
			t.Fatal("no control message reasserted after reconnect")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestEngine_NoReassertByDefault(t *testing.T) {
	h := newHarness(t, Config{})
	h.pb.Start()
	base := h.client.sentCount()

	h.client.states <- stream.StateConnected
	time.Sleep(50 * time.Millisecond)

	if got := h.client.sentCount(); got != base {
		t.Errorf("sent %d extra messages, want 0 without the reassert policy", got-base)
	}
}
