package watchparty

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/aniplay-dev/watchparty-go/watchparty/internal"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Client provides the high-level watch-together SDK. One Client owns one
// transport session for its whole lifetime; reconnection after a transient
// drop reuses the same Client and preserves room state.
//
// Register callbacks and the navigator before Connect. Callbacks fire on the
// read loop goroutine, one at a time, in transport delivery order.
type Client struct {
	cfg        Config
	logger     Logger
	clock      clockwork.Clock
	instanceID string

	store   *roomStore
	arbiter *syncArbiter
	nav     navBridge

	dispatcher Dispatcher
	writeCh    chan Inbound

	mu         sync.Mutex
	state      ConnState
	conn       *internal.Conn
	runCtx     context.Context
	runCancel  context.CancelFunc
	sessCancel context.CancelFunc
	closed     bool

	onStateChanged  func(StateEvent)
	onError         func(error)
	onRoomCreated   func(RoomCreatedEvent)
	onRoomJoined    func(RoomJoinedEvent)
	onUserJoined    func(UserEvent)
	onUserLeft      func(UserEvent)
	onNewHost       func(NewHostEvent)
	onVideoAction   func(VideoAction)
	onChangeEpisode func(ChangeEpisodeEvent)
	onChatMessage   func(ChatMessage)
	onRoomLeft      func()
	onEpisodeEnd    func()
}

// NewClient constructs a client with provided config.
// Use DefaultConfig() as a starting point and modify as needed.
func NewClient(cfg Config) *Client {
	return newClient(cfg, clockwork.NewRealClock())
}

func newClient(cfg Config, clock clockwork.Clock) *Client {
	c := &Client{
		cfg:        cfg,
		logger:     noopLogger{},
		clock:      clock,
		instanceID: uuid.NewString(),
		store:      newRoomStore(clock),
		writeCh:    make(chan Inbound, 16),
	}
	c.arbiter = newSyncArbiter(clock, c.logger, cfg.EmitEchoWindow, cfg.ApplyEchoWindow)
	c.nav = navBridge{logger: c.logger}
	if cfg.Nickname != "" {
		c.store.setNickname(cfg.Nickname)
	}
	c.installHandlers()
	return c
}

// SetLogger overrides logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
	c.arbiter.logger = l
	c.nav.logger = l
}

// SetNavigator attaches the hosting application's router so server-driven
// episode and room changes keep the route aligned.
func (c *Client) SetNavigator(n Navigator) { c.nav.nav = n }

// SetSurface attaches the active playback surface. Inbound room actions are
// applied to it; without one, consumers poll RoomVideoState and call AckSync.
func (c *Client) SetSurface(s Surface) { c.arbiter.setSurface(s) }

// OnStateChanged registers a callback for connection state transitions.
func (c *Client) OnStateChanged(fn func(StateEvent)) { c.onStateChanged = fn }

// OnError registers a callback for protocol and connectivity errors.
func (c *Client) OnError(fn func(error)) { c.onError = fn }

// OnRoomCreated registers a callback for room creation confirmations.
func (c *Client) OnRoomCreated(fn func(RoomCreatedEvent)) { c.onRoomCreated = fn }

// OnRoomJoined registers a callback for join confirmations.
func (c *Client) OnRoomJoined(fn func(RoomJoinedEvent)) { c.onRoomJoined = fn }

// OnUserJoined registers a callback for membership additions.
func (c *Client) OnUserJoined(fn func(UserEvent)) { c.onUserJoined = fn }

// OnUserLeft registers a callback for membership removals.
func (c *Client) OnUserLeft(fn func(UserEvent)) { c.onUserLeft = fn }

// OnNewHost registers a callback for host migration.
func (c *Client) OnNewHost(fn func(NewHostEvent)) { c.onNewHost = fn }

// OnVideoAction registers a callback for accepted room playback commands.
// Echoes suppressed by the guard never reach it.
func (c *Client) OnVideoAction(fn func(VideoAction)) { c.onVideoAction = fn }

// OnChangeEpisode registers a callback for server-driven episode switches.
func (c *Client) OnChangeEpisode(fn func(ChangeEpisodeEvent)) { c.onChangeEpisode = fn }

// OnChatMessage registers a callback for chat entries, including locally
// synthesized system notices.
func (c *Client) OnChatMessage(fn func(ChatMessage)) { c.onChatMessage = fn }

// OnRoomLeft registers a callback for server-confirmed room exits.
func (c *Client) OnRoomLeft(fn func()) { c.onRoomLeft = fn }

// OnEpisodeEnd registers a callback fired once per episode when the surface
// reports playback completion and AutoAdvance is enabled.
func (c *Client) OnEpisodeEnd(fn func()) { c.onEpisodeEnd = fn }

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the current room session mirror.
func (c *Client) Session() RoomSession { return c.store.Session() }

// Members returns a copy of the current membership list.
func (c *Client) Members() []Member { return c.store.Members() }

// Chat returns a copy of the chat log in receipt order.
func (c *Client) Chat() []ChatMessage { return c.store.Chat() }

// Nickname returns the effective nickname (configured, generated, or the
// one passed to the last CreateRoom/JoinRoom).
func (c *Client) Nickname() string { return c.store.Nickname() }

// SessionID returns the server-assigned session identity, empty before the
// welcome handshake completes.
func (c *Client) SessionID() string { return c.store.SessionID() }

// RoomError returns the last server-reported room error message, if any.
func (c *Client) RoomError() string { return c.store.RoomError() }

// RoomVideoState returns the last accepted room playback command and whether
// it is still pending application.
func (c *Client) RoomVideoState() (VideoAction, bool) { return c.arbiter.RoomVideoState() }

// AckSync clears the pending-sync flag after a pull-based consumer applied
// the room video state.
func (c *Client) AckSync() { c.arbiter.ackSync() }

// Connect dials the server, performs the hello handshake, and starts the
// read/write loops. It does not retry; retry policy applies to reconnection
// after an established session drops.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(ErrorDisconnected, "client closed")
	}
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return NewError(ErrorConnection, "already connected")
	}
	if c.runCtx == nil {
		c.runCtx, c.runCancel = context.WithCancel(context.Background())
	}
	runCtx := c.runCtx
	c.mu.Unlock()

	if c.cfg.URL == "" {
		return NewError(ErrorInvalidConfig, "empty URL")
	}
	if c.store.Nickname() == "" {
		c.store.setNickname(guestNickname())
	}

	c.setState(StateConnecting, nil)
	conn, err := c.dial(ctx)
	if err != nil {
		werr := WrapError(ErrorConnection, "connect failed", err)
		c.setState(StateDisconnected, werr)
		return werr
	}
	c.startSession(runCtx, conn)
	c.setState(StateConnected, nil)
	return nil
}

// CreateRoom requests a new room with this client as host. Confirmation
// arrives as a roomCreated event.
func (c *Client) CreateRoom(ctx context.Context, nickname string) error {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return NewError(ErrorInvalidArgument, "nickname must not be empty")
	}
	c.store.setNickname(nickname)
	return c.send(ctx, Inbound{Type: inboundCreateRoom, Data: CreateRoomPayload{Nickname: nickname}})
}

// JoinRoom requests membership in an existing room. Confirmation arrives as
// a roomJoined event carrying the room snapshot.
func (c *Client) JoinRoom(ctx context.Context, code, nickname string) error {
	code = strings.TrimSpace(code)
	nickname = strings.TrimSpace(nickname)
	if code == "" {
		return NewError(ErrorInvalidArgument, "room code must not be empty")
	}
	if nickname == "" {
		return NewError(ErrorInvalidArgument, "nickname must not be empty")
	}
	c.store.setNickname(nickname)
	return c.send(ctx, Inbound{Type: inboundJoinRoom, Data: JoinRoomPayload{RoomCode: code, Nickname: nickname}})
}

// LeaveRoom emits the leave intent and clears local room state immediately,
// without waiting for acknowledgment: the user-visible effect of leaving
// must not depend on the server round-trip. The room query parameter is
// dropped from the route via a history replace.
func (c *Client) LeaveRoom(ctx context.Context) error {
	session := c.store.Session()
	if !session.InRoom {
		return NewError(ErrorNotInRoom, "not in a room")
	}
	err := c.send(ctx, Inbound{Type: inboundLeaveRoom, Data: LeaveRoomPayload{RoomCode: session.RoomCode}})
	c.store.clear()
	c.arbiter.reset()
	c.nav.dropRoomParam()
	return err
}

// SendChat publishes a chat message to the current room.
func (c *Client) SendChat(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return NewError(ErrorInvalidArgument, "message must not be empty")
	}
	if !c.store.Session().InRoom {
		return NewError(ErrorNotInRoom, "not in a room")
	}
	return c.send(ctx, Inbound{Type: inboundChatMessage, Data: ChatPayload{Message: message}})
}

// SyncVideoAction broadcasts a host playback command. It is a guarded no-op
// for non-hosts and for surface events that are echoes of an applied sync;
// a genuine emission arms the short echo window so the server's reflection
// of this same action is not re-applied locally.
func (c *Client) SyncVideoAction(ctx context.Context, action VideoAction) error {
	session := c.store.Session()
	if !session.InRoom || !session.IsHost {
		return nil
	}
	if action.CurrentTime < 0 {
		action.CurrentTime = 0
	}
	if !c.arbiter.beginEmit() {
		return nil
	}
	return c.send(ctx, Inbound{Type: inboundVideoAction, Data: VideoActionPayload{Action: action}})
}

// SyncEpisodeChange broadcasts a host episode switch. No-op for non-hosts.
func (c *Client) SyncEpisodeChange(ctx context.Context, episodeID, animeID string) error {
	session := c.store.Session()
	if !session.InRoom || !session.IsHost {
		return nil
	}
	if episodeID == "" || animeID == "" {
		return NewError(ErrorInvalidArgument, "episodeId and animeId must not be empty")
	}
	c.arbiter.resetEpisode()
	return c.send(ctx, Inbound{Type: inboundChangeEpisode, Data: ChangeEpisodePayload{EpisodeID: episodeID, AnimeID: animeID}})
}

// ReportProgress feeds surface time/duration reports into auto-advance
// detection. The episode-end callback fires at most once per episode.
func (c *Client) ReportProgress(currentTime, duration float64) {
	if !c.cfg.AutoAdvance {
		return
	}
	if c.arbiter.reportProgress(currentTime, duration) {
		if fn := c.onEpisodeEnd; fn != nil {
			fn()
		}
	}
}

// Close shuts the client down. This is a deliberate disconnect: room state
// is cleared and any in-flight reconnection is cancelled.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.runCancel
	conn := c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.store.clear()
	c.arbiter.reset()
	c.setState(StateDisconnected, nil)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (*internal.Conn, error) {
	dialCtx := ctx
	if c.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, c.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	conn := internal.NewConn(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)

	hello := Inbound{
		Type: inboundHello,
		Data: HelloPayload{
			Protocol: ProtocolVersion,
			Nickname: c.store.Nickname(),
			Instance: c.instanceID,
		},
	}
	if err := conn.Write(dialCtx, hello); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		return nil, err
	}
	return conn, nil
}

func (c *Client) startSession(runCtx context.Context, conn *internal.Conn) {
	sessCtx, cancel := context.WithCancel(runCtx)
	c.mu.Lock()
	if c.sessCancel != nil {
		c.sessCancel()
	}
	old := c.conn
	c.conn = conn
	c.sessCancel = cancel
	c.mu.Unlock()
	if old != nil {
		_ = old.CloseNow()
	}

	go c.readLoop(sessCtx, conn, cancel)
	go c.writeLoop(sessCtx, conn)
}

func (c *Client) send(ctx context.Context, in Inbound) error {
	c.mu.Lock()
	state := c.state
	runCtx := c.runCtx
	c.mu.Unlock()
	if state != StateConnected {
		return NewError(ErrorNotConnected, "not connected")
	}

	select {
	case c.writeCh <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-runCtx.Done():
		return NewError(ErrorDisconnected, "client closed")
	}
}

func (c *Client) readLoop(ctx context.Context, conn *internal.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		var out Outbound
		if err := conn.Read(ctx, &out); err != nil {
			c.handleDisconnect(ctx, err)
			return
		}
		c.dispatcher.Dispatch(out)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn) {
	for {
		select {
		case in := <-c.writeCh:
			if err := conn.Write(ctx, in); err != nil {
				c.logger.Warn("write loop exit", map[string]any{"error": err.Error()})
				c.fireError(WrapError(ErrorConnection, "write failed", err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleDisconnect classifies a read failure. A deliberate closure (close
// frame from either endpoint) ends the session and clears room state; any
// other cause is treated as a network blip: room state is preserved and the
// reconnect loop takes over.
func (c *Client) handleDisconnect(ctx context.Context, err error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed || ctx.Err() != nil {
		return
	}

	if isDeliberateClose(err) {
		c.logger.Info("session ended by server", map[string]any{"error": err.Error()})
		c.store.clear()
		c.arbiter.reset()
		c.setState(StateDisconnected, err)
		return
	}

	c.logger.Warn("transient disconnect", map[string]any{"error": err.Error()})
	c.setState(StateReconnecting, err)
	go c.reconnectLoop()
}

// reconnectLoop drives bounded retry with a fixed backoff. Success restores
// the transport only; it does not re-issue a join request. Room state kept
// through the outage lets a server that restores sessions by identity resume
// the same apparent membership.
func (c *Client) reconnectLoop() {
	c.mu.Lock()
	runCtx := c.runCtx
	c.mu.Unlock()

	for attempt := 1; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		select {
		case <-runCtx.Done():
			return
		case <-c.clock.After(c.cfg.ReconnectDelay):
		}

		c.logger.Info("reconnect attempt", map[string]any{"attempt": attempt})
		conn, err := c.dial(runCtx)
		if err != nil {
			c.logger.Warn("reconnect attempt failed", map[string]any{"attempt": attempt, "error": err.Error()})
			continue
		}
		c.startSession(runCtx, conn)
		c.setState(StateConnected, nil)
		return
	}

	err := NewError(ErrorRetriesExhausted, "reconnect attempts exhausted")
	c.store.clear()
	c.arbiter.reset()
	c.fireError(err)
	c.setState(StateDisconnected, err)
}

func (c *Client) setState(next ConnState, err error) {
	c.mu.Lock()
	prev := c.state
	if prev == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	c.mu.Unlock()

	c.logger.Info("connection state", map[string]any{"from": prev.String(), "to": next.String()})
	if fn := c.onStateChanged; fn != nil {
		fn(StateEvent{OldState: prev, NewState: next, Err: err})
	}
}

func (c *Client) fireError(err error) {
	if err == nil {
		return
	}
	var pe *PartyError
	if errors.As(err, &pe) && IsProtocolError(err) {
		c.store.setRoomError(pe.Message)
	}
	if fn := c.onError; fn != nil {
		fn(err)
	}
}

// installHandlers wires server events into store mutations first, user
// callbacks second. Events are applied in transport delivery order; the
// read loop never runs two handlers concurrently.
func (c *Client) installHandlers() {
	c.dispatcher.SetOnWelcome(func(ev WelcomeEvent) {
		c.store.setIdentity(ev.SessionID)
		c.logger.Debug("session identity assigned", map[string]any{"sessionId": ev.SessionID})
	})
	c.dispatcher.SetOnRoomCreated(func(ev RoomCreatedEvent) {
		c.store.applyRoomCreated(ev)
		if fn := c.onRoomCreated; fn != nil {
			fn(ev)
		}
	})
	c.dispatcher.SetOnRoomJoined(func(ev RoomJoinedEvent) {
		c.store.applyRoomJoined(ev)
		// The one legitimate cross-component side effect at join time: align
		// the route with the room's current episode.
		if ev.CurrentEpisode != "" && ev.AnimeID != "" {
			c.nav.alignEpisode(ev.AnimeID, ev.CurrentEpisode, ev.RoomCode)
		}
		if fn := c.onRoomJoined; fn != nil {
			fn(ev)
		}
	})
	c.dispatcher.SetOnUserJoined(func(ev UserEvent) {
		notice := c.store.applyUserJoined(ev)
		if fn := c.onUserJoined; fn != nil {
			fn(ev)
		}
		if fn := c.onChatMessage; fn != nil {
			fn(notice)
		}
	})
	c.dispatcher.SetOnUserLeft(func(ev UserEvent) {
		notice := c.store.applyUserLeft(ev)
		if fn := c.onUserLeft; fn != nil {
			fn(ev)
		}
		if fn := c.onChatMessage; fn != nil {
			fn(notice)
		}
	})
	c.dispatcher.SetOnNewHost(func(ev NewHostEvent) {
		notice := c.store.applyNewHost(ev)
		if fn := c.onNewHost; fn != nil {
			fn(ev)
		}
		if fn := c.onChatMessage; fn != nil {
			fn(notice)
		}
	})
	c.dispatcher.SetOnVideoAction(func(ev VideoAction) {
		if !c.arbiter.handleInbound(ev) {
			return
		}
		if fn := c.onVideoAction; fn != nil {
			fn(ev)
		}
	})
	c.dispatcher.SetOnChangeEpisode(func(ev ChangeEpisodeEvent) {
		session := c.store.Session()
		if session.InRoom {
			c.nav.alignEpisode(ev.AnimeID, ev.EpisodeID, session.RoomCode)
		}
		c.arbiter.resetEpisode()
		if fn := c.onChangeEpisode; fn != nil {
			fn(ev)
		}
	})
	c.dispatcher.SetOnChatMessage(func(ev ChatMessage) {
		c.store.applyChat(ev)
		if fn := c.onChatMessage; fn != nil {
			fn(ev)
		}
	})
	c.dispatcher.SetOnRoomLeft(func() {
		c.store.clear()
		c.arbiter.reset()
		if fn := c.onRoomLeft; fn != nil {
			fn()
		}
	})
	c.dispatcher.SetOnError(c.fireError)
}

func isDeliberateClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}

func guestNickname() string {
	return fmt.Sprintf("Guest-%d", 1000+rand.IntN(9000))
}
