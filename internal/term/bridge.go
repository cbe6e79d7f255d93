package term

import (
	"sync"
	"time"
)

// SessionHandle is a host's handle onto one running terminal: the session
// bridge channel pair (user events in, terminal events out), plus the
// read-only status fields a host polls without going through the channels
// (ID, Title, Alive). The terminalLoop goroutine on the other end is the
// only thing that ever touches the screen model or the view state.
type SessionHandle struct {
	id SessionId

	userEvents chan UserEvent
	outbound   <-chan TerminalEvent

	loop *terminalLoop

	mu    sync.RWMutex
	title string
	alive bool
}

// ID returns the session's registry-assigned identifier.
func (h *SessionHandle) ID() SessionId {
	return h.id
}

// Title returns the last title the shell reported via OSC 0/2, or "" if
// none has been reported yet. Guarded by a short-lived mutex since it's
// written from the alert callback and read from the host goroutine.
func (h *SessionHandle) Title() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.title
}

func (h *SessionHandle) setTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
}

// Alive reports whether the session's Terminal Loop is still running.
func (h *SessionHandle) Alive() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.alive
}

func (h *SessionHandle) setAlive(alive bool) {
	h.mu.Lock()
	h.alive = alive
	h.mu.Unlock()
}

// Send delivers a UserEvent to this session's Terminal Loop. It blocks if
// the inbound channel is full; a host should not need to hold more than a
// handful of input events in flight.
func (h *SessionHandle) Send(ev UserEvent) {
	h.userEvents <- ev
}

// Events returns the channel a host drains TerminalEvents from.
func (h *SessionHandle) Events() <-chan TerminalEvent {
	return h.outbound
}

// IdleFor reports how long it has been since the PTY last produced output,
// letting a host render an "idle 2s" indicator without subscribing to every
// Redraw.
func (h *SessionHandle) IdleFor() time.Duration {
	return h.loop.screen.IdleFor()
}

// Close gives a caller an explicit shutdown path without waiting for the
// child process to exit on its own: it closes the PTY master, which both
// unblocks the PTY Reader with an error and sends the child a hangup, then
// closes the inbound UserEvent channel. The Terminal Loop observes one or
// both and publishes a final ExitEvent before stopping.
func (h *SessionHandle) Close() {
	h.loop.close()
	close(h.userEvents)
}
