package model

// nanosPerSecond is the upstream feed's timestamp resolution.
const nanosPerSecond = 1_000_000_000

// UnixSecondsFromNanos converts a nanosecond-resolution server timestamp
// to seconds since epoch. Every path that touches upstream timestamps
// (historical candles and live frames alike) must go through this one
// function; mixing divisors (1e6 vs 1e9) between paths is a correctness
// bug.
func UnixSecondsFromNanos(ns int64) int64 {
	return ns / nanosPerSecond
}
