package frame

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aniplay-dev/watchparty-go/watchparty"
)

func TestSurfaceApplyEncodesControlMessage(t *testing.T) {
	var posted [][]byte
	s := NewSurface(func(data []byte) error {
		posted = append(posted, data)
		return nil
	})

	err := s.Apply(watchparty.VideoAction{Kind: watchparty.ActionSeek, CurrentTime: 245.5})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(posted) != 1 {
		t.Fatalf("expected 1 posted message, got %d", len(posted))
	}

	var msg ControlMessage
	if err := json.Unmarshal(posted[0], &msg); err != nil {
		t.Fatalf("decode posted message: %v", err)
	}
	if msg.Type != ControlType {
		t.Fatalf("expected type %q, got %q", ControlType, msg.Type)
	}
	if msg.Action != watchparty.ActionSeek || msg.CurrentTime != 245.5 {
		t.Fatalf("unexpected control message: %+v", msg)
	}
	if msg.Timestamp == 0 {
		t.Fatalf("control message missing timestamp")
	}
}

func TestSurfaceApplyPropagatesSendError(t *testing.T) {
	want := errors.New("frame gone")
	s := NewSurface(func([]byte) error { return want })
	if err := s.Apply(watchparty.VideoAction{Kind: watchparty.ActionPlay}); !errors.Is(err, want) {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestDecodeProgressReport(t *testing.T) {
	m, err := Decode([]byte(`{"currentTime":123.4,"duration":1440}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !m.IsProgress() {
		t.Fatalf("expected progress report: %+v", m)
	}
	if m.IsStateChange() {
		t.Fatalf("progress report misclassified as state change")
	}
	if m.CurrentTime != 123.4 || m.Duration != 1440 {
		t.Fatalf("unexpected values: %+v", m)
	}
}

func TestDecodeStateChange(t *testing.T) {
	m, err := Decode([]byte(`{"type":"VIDEO_STATE_CHANGE","action":"pause","currentTime":245}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !m.IsStateChange() {
		t.Fatalf("expected state change: %+v", m)
	}
	if m.IsProgress() {
		t.Fatalf("state change misclassified as progress")
	}
}

func TestStateChangeRequiresKnownAction(t *testing.T) {
	m, err := Decode([]byte(`{"type":"VIDEO_STATE_CHANGE","action":"rewind","currentTime":10}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.IsStateChange() {
		t.Fatalf("unknown action must not classify as state change")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte(`{nope`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNotice(t *testing.T) {
	if got := Notice(nil); got != "Multiplayer mode" {
		t.Fatalf("nil state: %q", got)
	}
	paused := &watchparty.VideoAction{Kind: watchparty.ActionPause}
	if got := Notice(paused); got != "Host paused - please pause your video" {
		t.Fatalf("paused state: %q", got)
	}
	playing := &watchparty.VideoAction{Kind: watchparty.ActionPlay}
	if got := Notice(playing); got != "Host playing - please play your video" {
		t.Fatalf("playing state: %q", got)
	}
	seeking := &watchparty.VideoAction{Kind: watchparty.ActionSeek}
	if got := Notice(seeking); got != "Multiplayer mode" {
		t.Fatalf("seek state: %q", got)
	}
}
