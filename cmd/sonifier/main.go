// Command sonifier connects to a live market feed, turns market updates
// into sound, and serves snapshots, candles, and playback controls over
// HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/audiospy/sonifier/internal/audio"
	"github.com/audiospy/sonifier/internal/config"
	"github.com/audiospy/sonifier/internal/engine"
	"github.com/audiospy/sonifier/internal/history"
	"github.com/audiospy/sonifier/internal/marketstate"
	"github.com/audiospy/sonifier/internal/playback"
	"github.com/audiospy/sonifier/internal/server"
	"github.com/audiospy/sonifier/internal/session"
	"github.com/audiospy/sonifier/internal/stream"
	"github.com/audiospy/sonifier/internal/version"
)

const pumpInterval = 50 * time.Millisecond

func main() {
	configPath := flag.String("config", "configs/sonifier.yaml", "path to config file")
	flag.Parse()

	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting sonifier", "version", version.String())

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("sonifier exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stream client and derived components.
	client := stream.NewClient(stream.Config{
		URL:             cfg.Stream.WSURL,
		ReconnectDelay:  cfg.Stream.ReconnectDelay,
		WriteTimeout:    cfg.Stream.WriteTimeout,
		BufferSize:      cfg.Stream.BufferSize,
		StateBufferSize: cfg.Stream.StateBufferSize,
	}, logger)

	store := marketstate.NewStore()
	controller := playback.NewController(client, logger)

	// Audio chain. The synth engine is the clock; either the device
	// player or the headless pump drains it in real time.
	synth := audio.NewEngine(cfg.Audio.SampleRate)
	if cfg.Audio.CapturePath != "" {
		synth.EnableCapture()
	}
	scheduler := audio.NewScheduler(synth, controller, logger)

	var player *audio.Player
	var pump *audio.Pump
	if cfg.Audio.Output {
		p, err := audio.NewPlayer(synth)
		if err != nil {
			return fmt.Errorf("audio output: %w", err)
		}
		player = p
		defer player.Close()
	} else {
		pump = audio.NewPump(synth, pumpInterval, logger)
		if err := pump.Start(ctx); err != nil {
			return fmt.Errorf("audio pump: %w", err)
		}
		defer pump.Stop()
	}

	// Trading-hours gate.
	var gate *session.Gate
	if cfg.Session.Enforce {
		gate = session.NewGate(cfg.Session.MIC, cfg.Session.Enforce, logger)
	}

	// Historical candles with the two-tier cache. A cache tier that
	// fails to open is skipped, not fatal; history degrades to the API.
	fetcher := history.NewFetcher(cfg.History.RestURL, cfg.History.APIKey,
		history.WithTimeout(cfg.History.Timeout),
		history.WithRetries(cfg.History.MaxRetries, cfg.History.RetryBackoff),
		history.WithLogger(logger),
	)

	var hot, cold history.Tier
	if cfg.Cache.RedisURL != "" {
		tier, err := history.NewRedisTier(cfg.Cache.RedisURL, cfg.Cache.RedisPassword, cfg.Cache.TTL, logger)
		if err != nil {
			logger.Warn("redis cache unavailable, continuing without hot tier", "error", err)
		} else {
			hot = tier
		}
	}
	if cfg.Cache.SQLitePath != "" {
		tier, err := history.NewSQLiteTier(cfg.Cache.SQLitePath, logger)
		if err != nil {
			logger.Warn("sqlite cache unavailable, continuing without cold tier", "error", err)
		} else {
			cold = tier
			if err := tier.Prune(ctx, cfg.Cache.MaxAge); err != nil {
				logger.Warn("cache prune failed", "error", err)
			}
		}
	}
	hist := history.NewService(fetcher, hot, cold, logger)
	defer hist.Close()

	eng := engine.New(
		engine.Config{ReassertOnReconnect: cfg.Playback.ReassertOnReconnect},
		client, store, controller, scheduler, gate, logger,
	)

	srv := server.New(cfg.Server.Port, server.Deps{
		Snapshots: store,
		History:   hist,
		Playback:  controller,
		Stream:    client,
	}, logger)

	if err := eng.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", "error", err)
		}
		if err := client.Close(); err != nil && !errors.Is(err, stream.ErrAlreadyClosed) {
			logger.Warn("stream close failed", "error", err)
		}
		return eng.Stop(shutdownCtx)
	})

	logger.Info("sonifier running",
		"instance", cfg.Instance.ID,
		"ws_url", cfg.Stream.WSURL,
		"port", cfg.Server.Port,
	)

	err := g.Wait()

	if cfg.Audio.CapturePath != "" {
		if werr := audio.WriteWAV(cfg.Audio.CapturePath, synth.SampleRate(), synth.Captured()); werr != nil {
			logger.Error("failed to write capture", "path", cfg.Audio.CapturePath, "error", werr)
		} else {
			logger.Info("session capture written", "path", cfg.Audio.CapturePath)
		}
	}

	return err
}
