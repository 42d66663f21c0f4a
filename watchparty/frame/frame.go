// Package frame bridges the sync arbiter to an embedded playback frame that
// cannot be driven directly. Control messages are posted into the frame on a
// best-effort basis; the frame may report progress and playback state changes
// back, but nothing here assumes it does.
package frame

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aniplay-dev/watchparty-go/watchparty"
)

const (
	// ControlType marks a control message posted into the frame.
	ControlType = "MULTIPLAYER_CONTROL"
	// StateChangeType marks a playback state change reported by the frame.
	StateChangeType = "VIDEO_STATE_CHANGE"
)

// ControlMessage is the structured cross-frame command.
type ControlMessage struct {
	Type        string                `json:"type"`
	Action      watchparty.ActionKind `json:"action"`
	CurrentTime float64               `json:"currentTime"`
	Timestamp   int64                 `json:"timestamp"`
}

// Sender posts an encoded control message into the frame. The hosting
// application supplies the actual postMessage plumbing.
type Sender func(data []byte) error

// Surface adapts an embedded frame to the watchparty.Surface interface.
type Surface struct {
	send Sender
}

// NewSurface returns a Surface that forwards applied actions through send.
func NewSurface(send Sender) *Surface {
	return &Surface{send: send}
}

// Apply encodes the action as a control message and posts it to the frame.
func (s *Surface) Apply(action watchparty.VideoAction) error {
	msg := ControlMessage{
		Type:        ControlType,
		Action:      action.Kind,
		CurrentTime: action.CurrentTime,
		Timestamp:   time.Now().UnixMilli(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode control message: %w", err)
	}
	return s.send(data)
}

// Message is an inbound frame message: either a progress report
// (currentTime/duration) or a typed playback state change.
type Message struct {
	Type        string                `json:"type,omitempty"`
	Action      watchparty.ActionKind `json:"action,omitempty"`
	CurrentTime float64               `json:"currentTime"`
	Duration    float64               `json:"duration,omitempty"`
}

// Decode parses a raw frame message.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode frame message: %w", err)
	}
	return m, nil
}

// IsProgress reports whether the message is a time/duration progress report.
func (m Message) IsProgress() bool {
	return m.Type == "" && m.Duration > 0
}

// IsStateChange reports whether the message is a playback state change the
// host should re-broadcast to the room.
func (m Message) IsStateChange() bool {
	if m.Type != StateChangeType {
		return false
	}
	switch m.Action {
	case watchparty.ActionPlay, watchparty.ActionPause, watchparty.ActionSeek:
		return true
	default:
		return false
	}
}

// Notice returns the instruction shown to a guest when the frame cannot be
// driven programmatically and they must match the host's state by hand.
func Notice(state *watchparty.VideoAction) string {
	if state == nil {
		return "Multiplayer mode"
	}
	switch state.Kind {
	case watchparty.ActionPause:
		return "Host paused - please pause your video"
	case watchparty.ActionPlay:
		return "Host playing - please play your video"
	default:
		return "Multiplayer mode"
	}
}
