package rest

import "time"

// RoomInfo is the public view of a room exposed over the companion API.
type RoomInfo struct {
	RoomCode       string    `json:"roomCode"`
	MemberCount    int       `json:"memberCount"`
	HostNickname   string    `json:"hostNickname,omitempty"`
	CurrentEpisode string    `json:"currentEpisode,omitempty"`
	AnimeID        string    `json:"animeId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
