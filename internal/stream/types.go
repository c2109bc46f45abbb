package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/audiospy/sonifier/internal/model"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
	ErrAlreadyOpen   = errors.New("connect already called")
)

// State is the connection state, owned exclusively by the client.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// Frame types the server sends.
const (
	TypeMarketUpdate = "market_update"
)

// Frame is one parsed inbound message.
type Frame struct {
	Type       string
	MarketData model.Delta       // full-state fields, if present
	DeltaData  model.Delta       // changed fields only, if present
	Event      *model.AudioEvent // audio_info, if present
	ReceivedAt time.Time         // local timestamp when the frame was read
}

// Delta returns whichever partial update the frame carries. Servers send
// either market_data (full fields) or delta_data (changed fields); both
// merge the same way.
func (f Frame) Delta() model.Delta {
	if f.DeltaData != nil {
		return f.DeltaData
	}
	return f.MarketData
}

// frameWire is the JSON shape of an inbound frame.
type frameWire struct {
	Type       string         `json:"type"`
	MarketData model.Delta    `json:"market_data"`
	DeltaData  model.Delta    `json:"delta_data"`
	AudioInfo  *audioInfoWire `json:"audio_info"`
}

// audioInfoWire carries notes as [[pitch, velocity], ...] pairs.
type audioInfoWire struct {
	Notes    [][]int `json:"notes"`
	Duration float64 `json:"duration"`
}

// parseFrame decodes one inbound frame. A frame that fails to decode is
// the caller's to drop; parse failures never tear down the connection.
func parseFrame(data []byte, receivedAt time.Time) (Frame, error) {
	var wire frameWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if wire.Type == "" {
		return Frame{}, errors.New("frame missing type")
	}

	f := Frame{
		Type:       wire.Type,
		MarketData: wire.MarketData,
		DeltaData:  wire.DeltaData,
		ReceivedAt: receivedAt,
	}

	if wire.AudioInfo != nil {
		ev := &model.AudioEvent{
			Duration: wire.AudioInfo.Duration,
			Notes:    make([]model.Note, 0, len(wire.AudioInfo.Notes)),
		}
		for _, pair := range wire.AudioInfo.Notes {
			if len(pair) < 2 {
				return Frame{}, fmt.Errorf("audio_info note has %d elements, want 2", len(pair))
			}
			ev.Notes = append(ev.Notes, model.Note{Pitch: pair[0], Velocity: pair[1]})
		}
		f.Event = ev
	}

	return f, nil
}

// Config configures a stream client.
type Config struct {
	URL             string        // WebSocket URL (e.g. ws://localhost:8765/stream)
	ReconnectDelay  time.Duration // Fixed wait before each reconnect attempt
	WriteTimeout    time.Duration // Write deadline for sends
	BufferSize      int           // Frame channel buffer size
	StateBufferSize int           // State channel buffer size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:  5 * time.Second,
		WriteTimeout:    5 * time.Second,
		BufferSize:      1024,
		StateBufferSize: 64,
	}
}

// Stats reports counters for the life of the client.
type Stats struct {
	FramesDelivered int64
	ParseErrors     int64
	Reconnects      int64
}
