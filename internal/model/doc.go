// Package model defines shared data types used across the sonifier.
//
// Conventions:
//   - Candle prices: float64 dollars, descaled once at the feed boundary
//   - Candle timestamps: int64 seconds since Unix epoch (upstream sends
//     nanoseconds; UnixSecondsFromNanos is the single conversion point)
//   - Snapshot/Delta values: whatever JSON decoded them to (float64 for
//     numbers, string for text)
package model
