package watchparty

// ConnState represents the current state of the transport session.
type ConnState int

const (
	// StateDisconnected means the client is not connected.
	StateDisconnected ConnState = iota

	// StateConnecting means the client is establishing the initial connection.
	StateConnecting

	// StateConnected means the client is connected and ready.
	StateConnected

	// StateReconnecting means the client is attempting to reconnect after a
	// transient disconnect. Room state is preserved while in this state.
	StateReconnecting
)

// String returns the string representation of a ConnState.
func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// StateEvent represents a connection state change.
type StateEvent struct {
	OldState ConnState
	NewState ConnState
	Err      error // optional error that caused the transition
}
