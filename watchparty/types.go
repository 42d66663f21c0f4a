package watchparty

import "encoding/json"

const (
	ProtocolVersion = 1

	inboundHello         = "hello"
	inboundCreateRoom    = "createRoom"
	inboundJoinRoom      = "joinRoom"
	inboundLeaveRoom     = "leaveRoom"
	inboundChatMessage   = "chatMessage"
	inboundVideoAction   = "videoAction"
	inboundChangeEpisode = "changeEpisode"

	outboundEvent = "event"
	outboundError = "error"

	eventWelcome       = "welcome"
	eventRoomCreated   = "roomCreated"
	eventRoomJoined    = "roomJoined"
	eventUserJoined    = "userJoined"
	eventUserLeft      = "userLeft"
	eventNewHost       = "newHost"
	eventVideoAction   = "videoAction"
	eventChangeEpisode = "changeEpisode"
	eventChatMessage   = "chatMessage"
	eventRoomLeft      = "roomLeft"
)

// Inbound represents the envelope from client to server.
type Inbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Outbound is the envelope server -> client.
type Outbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error *Error          `json:"error,omitempty"`
}

// HelloPayload initiates the session after the socket opens.
type HelloPayload struct {
	Protocol int    `json:"protocol,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// CreateRoomPayload requests a new room with the sender as host.
type CreateRoomPayload struct {
	Nickname string `json:"nickname"`
}

// JoinRoomPayload requests membership in an existing room.
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Nickname string `json:"nickname"`
}

// LeaveRoomPayload announces the sender is leaving its room.
type LeaveRoomPayload struct {
	RoomCode string `json:"roomCode"`
}

// ChatPayload publishes a chat message to the sender's room.
type ChatPayload struct {
	Message string `json:"message"`
}

// VideoActionPayload broadcasts a host playback command.
type VideoActionPayload struct {
	Action VideoAction `json:"action"`
}

// ChangeEpisodePayload broadcasts a host episode switch.
type ChangeEpisodePayload struct {
	EpisodeID string `json:"episodeId"`
	AnimeID   string `json:"animeId"`
}

// Error describes a protocol error.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Code + ": " + e.Msg
}

// UnmarshalData decodes RawMessage into target.
func UnmarshalData(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}
