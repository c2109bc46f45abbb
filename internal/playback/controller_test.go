package playback

import (
	"errors"
	"testing"
)

// fakeSender records control messages and optionally fails.
type fakeSender struct {
	sent []ControlMessage
	err  error
}

func (f *fakeSender) Send(v any) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, v.(ControlMessage))
	return nil
}

func TestController_StartStop(t *testing.T) {
	sender := &fakeSender{}
	c := NewController(sender, nil)

	if c.Playing() {
		t.Fatal("new controller should be stopped")
	}

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !c.Playing() {
		t.Error("expected Playing after Start")
	}

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if c.Playing() {
		t.Error("expected not Playing after Stop")
	}

	want := []ControlMessage{
		{Type: "playback_control", Action: "start"},
		{Type: "playback_control", Action: "stop"},
	}
	if len(sender.sent) != len(want) {
		t.Fatalf("sent %d messages, want %d", len(sender.sent), len(want))
	}
	for i, msg := range want {
		if sender.sent[i] != msg {
			t.Errorf("message %d = %+v, want %+v", i, sender.sent[i], msg)
		}
	}
}

func TestController_RedundantTransitionIsNoOp(t *testing.T) {
	sender := &fakeSender{}
	c := NewController(sender, nil)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop on stopped controller failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("redundant Stop sent %d messages, want 0", len(sender.sent))
	}

	c.Start()
	sender.sent = nil

	if err := c.Start(); err != nil {
		t.Fatalf("Start on playing controller failed: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("redundant Start sent %d messages, want 0", len(sender.sent))
	}
	if !c.Playing() {
		t.Error("state changed on redundant Start")
	}
}

func TestController_FailedSendKeepsLocalState(t *testing.T) {
	sendErr := errors.New("connection lost")
	sender := &fakeSender{err: sendErr}
	c := NewController(sender, nil)

	err := c.Start()
	if !errors.Is(err, sendErr) {
		t.Errorf("Start = %v, want the send error", err)
	}
	if !c.Playing() {
		t.Error("local state should flip even when the send fails")
	}
}

func TestController_Reassert(t *testing.T) {
	sender := &fakeSender{}
	c := NewController(sender, nil)

	if err := c.Reassert(); err != nil {
		t.Fatalf("Reassert failed: %v", err)
	}
	if got := sender.sent[len(sender.sent)-1].Action; got != "stop" {
		t.Errorf("reasserted action = %q, want %q", got, "stop")
	}

	c.Start()
	if err := c.Reassert(); err != nil {
		t.Fatalf("Reassert failed: %v", err)
	}
	if got := sender.sent[len(sender.sent)-1].Action; got != "start" {
		t.Errorf("reasserted action = %q, want %q", got, "start")
	}
	if !c.Playing() {
		t.Error("Reassert must not change state")
	}
}
