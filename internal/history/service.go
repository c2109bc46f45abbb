package history

import (
	"context"
	"log/slog"

	"github.com/audiospy/sonifier/internal/metrics"
	"github.com/audiospy/sonifier/internal/model"
)

// CandleSource yields ordered candles for a symbol and range. The
// Fetcher satisfies this; tests substitute a stub.
type CandleSource interface {
	Candles(ctx context.Context, symbol string, start, end int64) ([]model.Candle, error)
}

// Service is the read-through candle store: hot tier, then cold tier,
// then upstream. Either tier may be nil (e.g. Redis unreachable at
// startup); the service degrades to whatever layers remain.
type Service struct {
	source CandleSource
	hot    Tier
	cold   Tier
	logger *slog.Logger
}

// NewService wires the layers together.
func NewService(source CandleSource, hot, cold Tier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, hot: hot, cold: cold, logger: logger}
}

// Candles returns the ordered candle sequence for symbol over
// [start, end] seconds since epoch.
func (s *Service) Candles(ctx context.Context, symbol string, start, end int64) ([]model.Candle, error) {
	key := cacheKey(symbol, start, end)

	if s.hot != nil {
		if candles, ok := s.hot.Get(ctx, key); ok {
			s.logger.Debug("candle cache hit", "tier", "hot", "key", key)
			return candles, nil
		}
	}

	if s.cold != nil {
		if candles, ok := s.cold.Get(ctx, key); ok {
			s.logger.Debug("candle cache hit", "tier", "cold", "key", key)
			// Backfill the hot tier for faster future access.
			if s.hot != nil {
				s.hot.Put(ctx, key, candles)
			}
			return candles, nil
		}
	}

	candles, err := s.source.Candles(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	metrics.HistoryFetches.Inc()

	if s.hot != nil {
		s.hot.Put(ctx, key, candles)
	}
	if s.cold != nil {
		s.cold.Put(ctx, key, candles)
	}

	return candles, nil
}

// Close releases both tiers.
func (s *Service) Close() error {
	var first error
	if s.hot != nil {
		if err := s.hot.Close(); err != nil {
			first = err
		}
	}
	if s.cold != nil {
		if err := s.cold.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
