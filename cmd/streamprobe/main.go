// streamprobe connects to the market feed and prints parsed frames and
// connection state transitions to the console.
// Usage: go run ./cmd/streamprobe --config configs/sonifier.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/audiospy/sonifier/internal/config"
	"github.com/audiospy/sonifier/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/sonifier.example.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := stream.NewClient(stream.Config{
		URL:             cfg.Stream.WSURL,
		ReconnectDelay:  cfg.Stream.ReconnectDelay,
		WriteTimeout:    cfg.Stream.WriteTimeout,
		BufferSize:      cfg.Stream.BufferSize,
		StateBufferSize: cfg.Stream.StateBufferSize,
	}, logger)

	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Printf("connected to %s, streaming frames (Ctrl+C to stop)\n\n", cfg.Stream.WSURL)

	frames := client.Frames()
	states := client.States()
	count := 0

	for {
		select {
		case <-ctx.Done():
			stats := client.Stats()
			fmt.Printf("\nstopped: %d frames printed, %d delivered, %d parse errors, %d reconnects\n",
				count, stats.FramesDelivered, stats.ParseErrors, stats.Reconnects)
			return

		case st := <-states:
			fmt.Printf("== connection state: %s\n", st)

		case f, ok := <-frames:
			if !ok {
				return
			}
			count++

			if *verbose {
				data, _ := json.MarshalIndent(f, "", "  ")
				fmt.Println(string(data))
				continue
			}

			delta := f.Delta()
			fmt.Printf("[%d] type=%s fields=%d", count, f.Type, len(delta))
			if f.Event != nil {
				fmt.Printf(" notes=%d duration=%.3fs", len(f.Event.Notes), f.Event.Duration)
			}
			fmt.Println()
		}
	}
}
