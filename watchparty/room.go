package watchparty

import (
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
)

const systemNickname = "System"

// RoomSession is the client-side mirror of room identity. InRoom is true
// exactly when RoomCode is non-empty; transitions are atomic, never partial.
type RoomSession struct {
	RoomCode string
	InRoom   bool
	IsHost   bool
}

// roomStore is the canonical client-side mirror of room membership and chat.
// It is mutated only by server-confirmed events and by the optimistic clear
// on leaveRoom; every mutation happens under one mutex so state writes within
// a handler are ordered.
type roomStore struct {
	mu    sync.Mutex
	clock clockwork.Clock

	sessionID string // assigned by welcome, survives room changes
	nickname  string

	session    RoomSession
	members    []Member
	chat       []ChatMessage
	lastChatID int64
	roomErr    string
}

func newRoomStore(clock clockwork.Clock) *roomStore {
	return &roomStore{clock: clock}
}

func (s *roomStore) Session() RoomSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *roomStore) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

func (s *roomStore) Nickname() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nickname
}

func (s *roomStore) Members() []Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Member, len(s.members))
	copy(out, s.members)
	return out
}

func (s *roomStore) Chat() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChatMessage, len(s.chat))
	copy(out, s.chat)
	return out
}

// RoomError returns the last server-reported room error, if any. It is
// cleared by the next successful roomCreated/roomJoined.
func (s *roomStore) RoomError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomErr
}

func (s *roomStore) setIdentity(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

func (s *roomStore) setNickname(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nickname = name
}

func (s *roomStore) setRoomError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomErr = msg
}

func (s *roomStore) applyRoomCreated(ev RoomCreatedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = RoomSession{RoomCode: ev.RoomCode, InRoom: true, IsHost: ev.IsHost}
	s.members = ev.Members
	s.chat = nil
	s.roomErr = ""
}

func (s *roomStore) applyRoomJoined(ev RoomJoinedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = RoomSession{RoomCode: ev.RoomCode, InRoom: true, IsHost: ev.IsHost}
	s.members = ev.Members
	// The server snapshot replaces any local chat wholesale.
	s.chat = ev.Chat
	if n := len(s.chat); n > 0 {
		s.lastChatID = s.chat[n-1].ID
	}
	s.roomErr = ""
}

// applyUserJoined replaces the member list with the server-provided one and
// synthesizes a system chat notice, which it returns for forwarding.
func (s *roomStore) applyUserJoined(ev UserEvent) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = ev.Members
	return s.appendSystem(fmt.Sprintf("%s joined the room", ev.Nickname))
}

func (s *roomStore) applyUserLeft(ev UserEvent) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = ev.Members
	return s.appendSystem(fmt.Sprintf("%s left the room", ev.Nickname))
}

// applyNewHost reassigns host authority after the previous host dropped. The
// local IsHost flag is recomputed by comparing the new host's identity to the
// local session identity; no other code path flips IsHost.
func (s *roomStore) applyNewHost(ev NewHostEvent) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = ev.Members
	s.session.IsHost = s.sessionID != "" && s.sessionID == ev.NewHostID
	return s.appendSystem(fmt.Sprintf("%s is now the host", ev.NewHostNickname))
}

func (s *roomStore) applyChat(msg ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID > s.lastChatID {
		s.lastChatID = msg.ID
	}
	s.chat = append(s.chat, msg)
}

// clear resets room state to "not currently in a room". Chat goes with it;
// the session identity and nickname survive.
func (s *roomStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = RoomSession{}
	s.members = nil
	s.chat = nil
	s.lastChatID = 0
}

// appendSystem must be called with the mutex held. IDs are millisecond
// timestamps bumped past the previous one so two notices in the same
// millisecond stay ordered.
func (s *roomStore) appendSystem(text string) ChatMessage {
	now := s.clock.Now().UnixMilli()
	id := now
	if id <= s.lastChatID {
		id = s.lastChatID + 1
	}
	s.lastChatID = id
	msg := ChatMessage{
		ID:        id,
		Nickname:  systemNickname,
		Message:   text,
		Timestamp: now,
		IsSystem:  true,
	}
	s.chat = append(s.chat, msg)
	return msg
}
