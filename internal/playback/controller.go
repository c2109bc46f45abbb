// Package playback tracks the local play/stop state and mirrors
// transitions to the server with playback_control messages.
package playback

import (
	"log/slog"
	"sync"
)

// State is the playback state, owned exclusively by the controller.
type State string

const (
	StateStopped State = "stopped"
	StatePlaying State = "playing"
)

// Sender transmits an outbound control message. The stream client
// satisfies this.
type Sender interface {
	Send(v any) error
}

// ControlMessage is the outbound playback control wire format.
type ControlMessage struct {
	Type   string `json:"type"`
	Action string `json:"action"`
}

const (
	controlType = "playback_control"
	actionStart = "start"
	actionStop  = "stop"
)

// Controller owns the playback state. Its Playing gate is consulted by
// the audio scheduler on every incoming event.
//
// Policy: a redundant Start or Stop is a complete no-op — no state
// change and no re-sent control message. Reassert exists for the
// explicit post-reconnect case.
type Controller struct {
	sender Sender
	logger *slog.Logger

	mu    sync.RWMutex
	state State
}

// NewController creates a stopped controller.
func NewController(sender Sender, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		sender: sender,
		logger: logger,
		state:  StateStopped,
	}
}

// Start transitions Stopped → Playing and tells the server.
//
// A failed send does not revert the local state: the gate opens either
// way, and local and server-acknowledged state may diverge transiently.
// The send error is returned so the caller can surface it.
func (c *Controller) Start() error {
	return c.transition(StatePlaying, actionStart)
}

// Stop transitions Playing → Stopped and tells the server. Failure
// semantics match Start.
func (c *Controller) Stop() error {
	return c.transition(StateStopped, actionStop)
}

func (c *Controller) transition(target State, action string) error {
	c.mu.Lock()
	if c.state == target {
		c.mu.Unlock()
		return nil
	}
	c.state = target
	c.mu.Unlock()

	c.logger.Info("playback state", "state", target)

	if err := c.sender.Send(ControlMessage{Type: controlType, Action: action}); err != nil {
		c.logger.Warn("playback control send failed, keeping local state",
			"action", action,
			"error", err,
		)
		return err
	}
	return nil
}

// Reassert re-sends the control message for the current state without
// changing it. Used after a reconnect when the reassert policy is
// enabled; the server otherwise keeps whatever playback state it last
// saw.
func (c *Controller) Reassert() error {
	action := actionStop
	if c.Playing() {
		action = actionStart
	}
	return c.sender.Send(ControlMessage{Type: controlType, Action: action})
}

// Playing reports whether the gate is open.
func (c *Controller) Playing() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == StatePlaying
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
