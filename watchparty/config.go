package watchparty

import "time"

// Config controls how the SDK connects and synchronizes.
type Config struct {
	URL      string
	Nickname string // generated ("Guest-NNNN") if empty

	// ConnectTimeout bounds the websocket dial plus handshake.
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// ReconnectAttempts is the number of dials after a transient disconnect
	// before giving up. ReconnectDelay is the fixed pause between attempts.
	ReconnectAttempts int
	ReconnectDelay    time.Duration

	// EmitEchoWindow suppresses a just-emitted host action from being
	// re-applied when the server reflects it back. ApplyEchoWindow covers the
	// longer period while the playback surface applies an inbound action and
	// its own resulting events must not be re-emitted.
	EmitEchoWindow  time.Duration
	ApplyEchoWindow time.Duration

	// AutoAdvance enables the end-of-episode callback when the surface
	// reports currentTime >= duration.
	AutoAdvance bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:    20 * time.Second,
		ReadTimeout:       0, // server handles idle detection
		WriteTimeout:      10 * time.Second,
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		EmitEchoWindow:    100 * time.Millisecond,
		ApplyEchoWindow:   500 * time.Millisecond,
	}
}
