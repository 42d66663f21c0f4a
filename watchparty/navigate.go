package watchparty

import (
	"net/url"
)

// Navigator abstracts the hosting application's router. Current is read at
// event time, never captured at subscription setup, so long-lived handlers
// always compare against the live route.
type Navigator interface {
	// Current returns the current route as path plus query ("/watch/99?ep=12").
	Current() string
	// Navigate pushes a new route.
	Navigate(route string)
	// Replace swaps the current route without adding a history entry.
	Replace(route string)
}

// WatchRoute builds the canonical watch route for an anime/episode pair,
// with the room code appended when in a room.
func WatchRoute(animeID, episodeID, roomCode string) string {
	route := "/watch/" + url.PathEscape(animeID) + "?ep=" + url.QueryEscape(episodeID)
	if roomCode != "" {
		route += "&room=" + url.QueryEscape(roomCode)
	}
	return route
}

// navBridge keeps the browser route consistent with server-driven episode
// and room changes. All navigation is compare-then-act: repeated identical
// events navigate at most once.
type navBridge struct {
	nav    Navigator
	logger Logger
}

// alignEpisode navigates to the route for the given episode if the current
// route differs. No-op without a navigator.
func (b *navBridge) alignEpisode(animeID, episodeID, roomCode string) {
	if b.nav == nil || animeID == "" || episodeID == "" {
		return
	}
	target := WatchRoute(animeID, episodeID, roomCode)
	if b.nav.Current() == target {
		return
	}
	b.logger.Debug("navigating to episode", map[string]any{"route": target})
	b.nav.Navigate(target)
}

// dropRoomParam removes only the room query parameter from the current
// route, preserving the rest, via a history replace.
func (b *navBridge) dropRoomParam() {
	if b.nav == nil {
		return
	}
	current := b.nav.Current()
	u, err := url.Parse(current)
	if err != nil {
		b.logger.Warn("unparseable current route", map[string]any{"route": current})
		return
	}
	q := u.Query()
	if _, ok := q["room"]; !ok {
		return
	}
	q.Del("room")
	u.RawQuery = q.Encode()
	b.nav.Replace(u.String())
}
