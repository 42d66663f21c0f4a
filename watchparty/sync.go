package watchparty

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Surface is an attachable playback surface the arbiter can drive. A native
// video element applies actions directly; an embedded frame forwards them as
// control messages (see the frame package) on a best-effort basis.
type Surface interface {
	Apply(action VideoAction) error
}

// echoGuard is the short-lived reentrancy flag that keeps a locally
// originated action from being re-applied when the server or the playback
// surface reflects it back. It is armed for a bounded window and expires on
// its own; nothing is persisted.
type echoGuard struct {
	mu         sync.Mutex
	clock      clockwork.Clock
	armedUntil time.Time
}

func (g *echoGuard) arm(window time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	until := g.clock.Now().Add(window)
	if until.After(g.armedUntil) {
		g.armedUntil = until
	}
}

func (g *echoGuard) armed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clock.Now().Before(g.armedUntil)
}

func (g *echoGuard) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armedUntil = time.Time{}
}

// syncArbiter owns the most-recently-observed room video state and the echo
// guard. Inbound room actions flow through handleInbound; the outbound path
// (Client.SyncVideoAction) consults the same guard before emitting.
type syncArbiter struct {
	clock  clockwork.Clock
	logger Logger
	guard  echoGuard

	emitWindow  time.Duration
	applyWindow time.Duration

	mu        sync.Mutex
	surface   Surface
	roomState *VideoAction
	pending   bool
	endFired  bool
}

func newSyncArbiter(clock clockwork.Clock, logger Logger, emitWindow, applyWindow time.Duration) *syncArbiter {
	return &syncArbiter{
		clock:       clock,
		logger:      logger,
		guard:       echoGuard{clock: clock},
		emitWindow:  emitWindow,
		applyWindow: applyWindow,
	}
}

func (a *syncArbiter) setSurface(s Surface) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.surface = s
}

// beginEmit gates the outbound path: it reports false while the guard is
// armed (the intent is the surface's own reaction to an applied sync, not a
// new user action) and otherwise arms the short emit window.
func (a *syncArbiter) beginEmit() bool {
	if a.guard.armed() {
		return false
	}
	a.guard.arm(a.emitWindow)
	return true
}

// handleInbound applies a server-delivered action. Echoes inside the guard
// window are dropped silently. Accepted actions become the room video state,
// raise the pending-sync flag, and arm the longer apply window so the
// surface's resulting events are not re-emitted. Returns false when dropped.
func (a *syncArbiter) handleInbound(action VideoAction) bool {
	if a.guard.armed() {
		a.logger.Debug("dropping echoed video action", map[string]any{"kind": action.Kind})
		return false
	}
	a.guard.arm(a.applyWindow)

	a.mu.Lock()
	a.roomState = &action
	a.pending = true
	surface := a.surface
	a.mu.Unlock()

	if surface != nil {
		if err := surface.Apply(action); err != nil {
			a.logger.Warn("surface apply failed", map[string]any{"kind": action.Kind, "error": err.Error()})
		} else {
			a.mu.Lock()
			a.pending = false
			a.mu.Unlock()
		}
	}
	return true
}

// RoomVideoState returns the last action received from the room and whether
// a consumer still needs to apply it.
func (a *syncArbiter) RoomVideoState() (VideoAction, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.roomState == nil {
		return VideoAction{}, false
	}
	return *a.roomState, a.pending
}

// ackSync clears the pending-sync flag once a pull-based consumer has
// applied the room state itself.
func (a *syncArbiter) ackSync() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = false
}

// reportProgress tracks playback completion. It reports true exactly once
// per episode when the surface says the episode finished.
func (a *syncArbiter) reportProgress(currentTime, duration float64) bool {
	if duration <= 0 || currentTime < duration {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.endFired {
		return false
	}
	a.endFired = true
	return true
}

// resetEpisode re-arms end-of-episode detection after an episode change.
func (a *syncArbiter) resetEpisode() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endFired = false
	a.roomState = nil
	a.pending = false
}

func (a *syncArbiter) reset() {
	a.guard.reset()
	a.resetEpisode()
}
