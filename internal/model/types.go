package model

// Snapshot is the latest known full market state, keyed by field name
// (e.g. "symbol", "open", "close", "volume", "timestamp").
//
// A snapshot starts empty and is only ever grown: keys are added or
// overwritten by delta merges, never removed. Absence of a key means the
// field has not been received yet. Stored snapshots are copy-on-write;
// readers must treat the map as immutable.
type Snapshot map[string]any

// Clone returns a shallow copy of the snapshot. A nil snapshot clones to
// an empty one.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Delta is a partial market update carrying only the fields that changed
// since the last snapshot.
type Delta map[string]any

// Note is one pitch/velocity pair within an AudioEvent.
// Pitch follows the MIDI convention (69 = A4). Velocity is nominally
// 0-127; out-of-range values are clamped at the amplitude mapping.
type Note struct {
	Pitch    int
	Velocity int
}

// AudioEvent describes one sonification instant: a cluster of notes that
// start in unison and a shared duration in seconds. Events are ephemeral;
// they exist only for the scheduling call that consumes them.
type AudioEvent struct {
	Notes    []Note
	Duration float64 // seconds, must be > 0 to schedule
}

// Candle is one OHLCV bar. Time is seconds since Unix epoch.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
