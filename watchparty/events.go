package watchparty

// Member is one viewer in a room's membership list. ID is the opaque session
// identity assigned by the server; exactly one member is host at any time.
type Member struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	IsHost   bool   `json:"isHost"`
}

// ChatMessage is one entry in a room's append-only chat log. System notices
// (joins, leaves, host changes) are synthesized locally and carry IsSystem.
type ChatMessage struct {
	ID        int64  `json:"id"`
	Nickname  string `json:"nickname"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	IsSystem  bool   `json:"isSystem,omitempty"`
}

// ActionKind is the kind of playback command carried by a VideoAction.
type ActionKind string

const (
	ActionPlay  ActionKind = "play"
	ActionPause ActionKind = "pause"
	ActionSeek  ActionKind = "seek"
)

// VideoAction is a playback command: what to do and at which position.
// Episode identity travels separately via changeEpisode.
type VideoAction struct {
	Kind        ActionKind `json:"kind"`
	CurrentTime float64    `json:"currentTime"`
}

// WelcomeEvent is sent once after the hello handshake and tells the client
// its own session identity for host comparisons.
type WelcomeEvent struct {
	SessionID string `json:"sessionId"`
}

// RoomCreatedEvent confirms room creation with the sender as host.
type RoomCreatedEvent struct {
	RoomCode string   `json:"roomCode"`
	IsHost   bool     `json:"isHost"`
	Members  []Member `json:"members"`
}

// RoomJoinedEvent confirms a join and carries the room snapshot. When the
// room is mid-episode, CurrentEpisode and AnimeID point the new member at it.
type RoomJoinedEvent struct {
	RoomCode       string        `json:"roomCode"`
	IsHost         bool          `json:"isHost"`
	Members        []Member      `json:"members"`
	Chat           []ChatMessage `json:"chat,omitempty"`
	CurrentEpisode string        `json:"currentEpisode,omitempty"`
	AnimeID        string        `json:"animeId,omitempty"`
}

// UserEvent is emitted when a member joins or leaves. Members is the full
// post-change list; it replaces the local set wholesale.
type UserEvent struct {
	Members  []Member `json:"members"`
	Nickname string   `json:"nickname"`
}

// NewHostEvent announces host migration after the previous host disconnected.
type NewHostEvent struct {
	Members         []Member `json:"members"`
	NewHostID       string   `json:"newHostId"`
	NewHostNickname string   `json:"newHostNickname"`
}

// ChangeEpisodeEvent announces a host-driven episode switch.
type ChangeEpisodeEvent struct {
	EpisodeID string `json:"episodeId"`
	AnimeID   string `json:"animeId"`
}
