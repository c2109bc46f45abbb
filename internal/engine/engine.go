// Package engine runs the sonification pipeline: one goroutine consumes
// parsed frames in arrival order, merges deltas into the snapshot,
// consults the playback gate, and forwards audio events to the
// scheduler. Because all of that happens on one goroutine, a merge and
// its gate check are atomic with respect to a single message.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/audiospy/sonifier/internal/audio"
	"github.com/audiospy/sonifier/internal/marketstate"
	"github.com/audiospy/sonifier/internal/metrics"
	"github.com/audiospy/sonifier/internal/model"
	"github.com/audiospy/sonifier/internal/playback"
	"github.com/audiospy/sonifier/internal/session"
	"github.com/audiospy/sonifier/internal/sonify"
	"github.com/audiospy/sonifier/internal/stream"
)

// Config holds engine policy knobs.
type Config struct {
	// ReassertOnReconnect re-sends the current playback state after the
	// stream reports Connected. Off by default: the upstream protocol
	// does not replay control messages, and local and server playback
	// state may diverge across a reconnect (documented limitation).
	ReassertOnReconnect bool
}

// Engine is the pipeline dispatcher.
type Engine struct {
	cfg       Config
	client    stream.Client
	store     *marketstate.Store
	playback  *playback.Controller
	scheduler *audio.Scheduler
	sonifier  *sonify.Sonifier
	session   *session.Gate
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an engine. session may be nil when no trading-hours gate
// is configured.
func New(
	cfg Config,
	client stream.Client,
	store *marketstate.Store,
	pb *playback.Controller,
	scheduler *audio.Scheduler,
	gate *session.Gate,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		client:    client,
		store:     store,
		playback:  pb,
		scheduler: scheduler,
		sonifier:  sonify.New(),
		session:   gate,
		logger:    logger,
	}
}

// Start launches the dispatch goroutine.
func (e *Engine) Start(ctx context.Context) error {
	ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go e.run(ctx)

	e.logger.Info("engine started",
		"reassert_on_reconnect", e.cfg.ReassertOnReconnect,
	)
	return nil
}

// Stop halts dispatch.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("engine stopped")
	case <-ctx.Done():
		e.logger.Warn("engine stop timed out")
	}
	return nil
}

// run is the single dispatch loop.
func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	frames := e.client.Frames()
	states := e.client.States()

	for {
		select {
		case <-ctx.Done():
			return

		case st := <-states:
			e.handleState(st)

		case f, ok := <-frames:
			if !ok {
				e.logger.Info("frame channel closed")
				return
			}
			e.handleFrame(f)
		}
	}
}

// handleState reacts to connection state transitions.
func (e *Engine) handleState(st stream.State) {
	if st != stream.StateConnected || !e.cfg.ReassertOnReconnect {
		return
	}
	if err := e.playback.Reassert(); err != nil {
		e.logger.Warn("playback reassert failed", "error", err)
	}
}

// handleFrame processes one inbound frame. The merge and the gate check
// run back to back on this goroutine; no other message interleaves.
func (e *Engine) handleFrame(f stream.Frame) {
	switch f.Type {
	case stream.TypeMarketUpdate:
		e.handleMarketUpdate(f)
	default:
		e.logger.Debug("skipping frame type", "type", f.Type)
	}
}

func (e *Engine) handleMarketUpdate(f stream.Frame) {
	snap := e.store.Apply(f.Delta())
	metrics.DeltasApplied.Inc()

	if !e.playback.Playing() {
		// Discarded, not buffered: stopping playback silences the feed
		// immediately rather than queueing a burst for later.
		metrics.EventsDiscarded.Inc()
		return
	}

	if e.session != nil && !e.session.Open(time.Now()) {
		metrics.EventsDiscarded.Inc()
		return
	}

	var ev model.AudioEvent
	if f.Event != nil {
		ev = *f.Event
	} else {
		ev = e.sonifier.Sonify(snap)
	}

	if err := e.scheduler.Schedule(ev); err != nil {
		e.logger.Warn("audio event rejected", "error", err, "duration", ev.Duration)
	}
}
