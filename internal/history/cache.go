package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/audiospy/sonifier/internal/metrics"
	"github.com/audiospy/sonifier/internal/model"
)

// Tier is one cache layer keyed by the exact query. Gets and puts are
// best effort: a failing tier degrades to a miss, never to an error on
// the request path.
type Tier interface {
	Get(ctx context.Context, key string) ([]model.Candle, bool)
	Put(ctx context.Context, key string, candles []model.Candle)
	Close() error
}

// cacheKey identifies one candle query.
func cacheKey(symbol string, start, end int64) string {
	return fmt.Sprintf("candles:%s:%d:%d", symbol, start, end)
}

// -----------------------------------------------------------------------------
// Redis hot tier
// -----------------------------------------------------------------------------

// RedisTier caches candle payloads in Redis with a TTL.
type RedisTier struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisTier connects to Redis and verifies the connection.
func NewRedisTier(redisURL, password string, ttl time.Duration, logger *slog.Logger) (*RedisTier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if password != "" {
		opt.Password = password
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisTier{client: client, ttl: ttl, logger: logger}, nil
}

// Get looks the key up in Redis.
func (t *RedisTier) Get(ctx context.Context, key string) ([]model.Candle, bool) {
	data, err := t.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			t.logger.Warn("redis get failed", "key", key, "error", err)
		}
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}

	var candles []model.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		t.logger.Warn("redis payload corrupt", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("redis", "miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("redis", "hit").Inc()
	return candles, true
}

// Put stores the payload with the configured TTL.
func (t *RedisTier) Put(ctx context.Context, key string, candles []model.Candle) {
	data, err := json.Marshal(candles)
	if err != nil {
		t.logger.Warn("marshal candles failed", "key", key, "error", err)
		return
	}
	if err := t.client.Set(ctx, key, data, t.ttl).Err(); err != nil {
		t.logger.Warn("redis set failed", "key", key, "error", err)
	}
}

// Close releases the Redis connection.
func (t *RedisTier) Close() error {
	return t.client.Close()
}

// -----------------------------------------------------------------------------
// SQLite cold tier
// -----------------------------------------------------------------------------

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS candle_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// SQLiteTier caches candle payloads in a local SQLite file, the
// long-term counterpart to the Redis tier.
type SQLiteTier struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteTier opens (and if needed initializes) the cache database.
func NewSQLiteTier(path string, logger *slog.Logger) (*SQLiteTier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteTier{db: db, logger: logger}, nil
}

// Get looks the key up in the cache table.
func (t *SQLiteTier) Get(ctx context.Context, key string) ([]model.Candle, bool) {
	var payload []byte
	err := t.db.QueryRowContext(ctx,
		`SELECT payload FROM candle_cache WHERE key = ?`, key,
	).Scan(&payload)
	if err != nil {
		if err != sql.ErrNoRows {
			t.logger.Warn("sqlite get failed", "key", key, "error", err)
		}
		metrics.CacheLookups.WithLabelValues("sqlite", "miss").Inc()
		return nil, false
	}

	var candles []model.Candle
	if err := json.Unmarshal(payload, &candles); err != nil {
		t.logger.Warn("sqlite payload corrupt", "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues("sqlite", "miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("sqlite", "hit").Inc()
	return candles, true
}

// Put upserts the payload.
func (t *SQLiteTier) Put(ctx context.Context, key string, candles []model.Candle) {
	payload, err := json.Marshal(candles)
	if err != nil {
		t.logger.Warn("marshal candles failed", "key", key, "error", err)
		return
	}

	_, err = t.db.ExecContext(ctx,
		`INSERT INTO candle_cache (key, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		key, payload, time.Now().Unix(),
	)
	if err != nil {
		t.logger.Warn("sqlite put failed", "key", key, "error", err)
	}
}

// Prune removes entries older than maxAge.
func (t *SQLiteTier) Prune(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := t.db.ExecContext(ctx,
		`DELETE FROM candle_cache WHERE created_at < ?`, cutoff,
	)
	if err != nil {
		return fmt.Errorf("prune candle cache: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		t.logger.Info("pruned candle cache", "removed", n)
	}
	return nil
}

// Close releases the database handle.
func (t *SQLiteTier) Close() error {
	return t.db.Close()
}
