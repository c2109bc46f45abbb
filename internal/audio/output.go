package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

// Player drives the engine through the system audio device.
type Player struct {
	player oto.Player
}

// NewPlayer opens the audio device and starts pulling PCM from the
// engine. Mono, 16-bit.
func NewPlayer(e *Engine) (*Player, error) {
	ctx, ready, err := oto.NewContext(e.SampleRate(), 1, 2)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	p := ctx.NewPlayer(e)
	p.Play()

	return &Player{player: p}, nil
}

// Close stops playback and releases the device.
func (p *Player) Close() error {
	return p.player.Close()
}

// Pump advances the engine clock at real-time rate when no audio device
// is in use (headless runs, tests of the full pipeline). Scheduling
// semantics are identical either way; only where the PCM goes differs.
type Pump struct {
	engine   *Engine
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPump creates a pump draining the engine every interval.
func NewPump(e *Engine, interval time.Duration, logger *slog.Logger) *Pump {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pump{engine: e, interval: interval, logger: logger}
}

// Start begins draining.
func (p *Pump) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	// Bytes per tick: sampleRate * seconds * 2 bytes per frame.
	chunk := int(float64(p.engine.SampleRate())*p.interval.Seconds()) * 2
	buf := make([]byte, chunk)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := io.ReadFull(p.engine, buf); err != nil {
					p.logger.Warn("audio pump read failed", "error", err)
				}
			}
		}
	}()

	p.logger.Info("audio pump started", "interval", p.interval)
	return nil
}

// Stop halts draining.
func (p *Pump) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}
