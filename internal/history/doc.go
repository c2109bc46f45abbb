// Package history fetches historical OHLCV candles over REST and caches
// them in two tiers: Redis for fast short-term access and SQLite for
// long-term local storage. Lookups read through hot → cold → upstream;
// a cold hit backfills the hot tier.
//
// Unit normalization (nanosecond timestamps to seconds, fixed-point
// prices to dollars) happens exactly once, at the fetch boundary, before
// anything is cached.
package history
