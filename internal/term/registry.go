package term

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrPtyStart wraps any failure to spawn the shell behind a session's PTY,
// so a caller can distinguish spawn failure from every other error path
// with errors.Is(err, ErrPtyStart) rather than string matching.
var ErrPtyStart = errors.New("term: pty start failed")

// SessionOption configures a Session at creation time.
type SessionOption func(*Config)

// WithScrollback overrides the default scrollback depth.
func WithScrollback(lines int) SessionOption {
	return func(c *Config) { c.Scrollback = lines }
}

// WithShell overrides the shell command the session spawns.
func WithShell(shell string) SessionOption {
	return func(c *Config) { c.Shell = shell }
}

// WithProductName overrides the TERM_PROGRAM identity exported to the child.
func WithProductName(name string) SessionOption {
	return func(c *Config) { c.ProductName = name }
}

// Registry owns a process's (or a test's) set of running sessions: it
// allocates ids, spawns terminal loops, and fans out the alert bus every
// session's screen model publishes to. The bus and the id counter are
// per-Registry rather than package-global, so tests can run isolated
// registries concurrently.
type Registry struct {
	nextID int64 // atomic

	mu        sync.RWMutex
	sessions  map[SessionId]*SessionHandle
	active    SessionId
	hasActive bool

	subMu sync.RWMutex
	subs  map[uuid.UUID]func(Alert)

	// OnLastSessionExit is invoked, if set, after the registry's session
	// count drops to zero. Process-wide exit on last session is host
	// policy, not registry policy: a demo host can set this to os.Exit, a
	// GUI host can leave it nil and keep running.
	OnLastSessionExit func()

	// Logf, when set, is inherited by every session this registry opens as
	// its debug diagnostics hook (dropped unrecognized keys). Nil means
	// silent.
	Logf func(string, ...any)

	palette Palette
}

// NewRegistry constructs an empty Registry resolving Screen Model colors
// through palette.
func NewRegistry(palette Palette) *Registry {
	return &Registry{
		sessions: make(map[SessionId]*SessionHandle),
		subs:     make(map[uuid.UUID]func(Alert)),
		palette:  palette,
	}
}

// AllocID returns a unique, monotonically increasing session id.
func (r *Registry) AllocID() SessionId {
	return SessionId(atomic.AddInt64(&r.nextID, 1) - 1)
}

// NewSession spawns a shell behind a PTY, starts its Terminal Loop on a
// dedicated goroutine, and registers the resulting handle. PTY spawn
// failure surfaces as the returned error; no session is registered in that
// case.
func (r *Registry) NewSession(initialSize TerminalSize, opts ...SessionOption) (*SessionHandle, error) {
	id := r.AllocID()

	cfg := Config{Logf: r.Logf}
	for _, opt := range opts {
		opt(&cfg)
	}

	handle := &SessionHandle{id: id}

	onAlert := func(a Alert) {
		a.Session = id
		if a.Kind == AlertTitleChanged {
			handle.setTitle(a.Title)
		}
		r.publish(a)
	}

	onExit := func(err error) {
		handle.setAlive(false)
		r.remove(id)
	}

	loop, err := newTerminalLoop(cfg, initialSize, r.palette, onAlert, onExit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPtyStart, err)
	}

	handle.userEvents = loop.userEvents
	handle.outbound = loop.outbound
	handle.loop = loop
	handle.setAlive(true)

	go loop.run()

	r.mu.Lock()
	r.sessions[id] = handle
	if !r.hasActive {
		r.active = id
		r.hasActive = true
	}
	r.mu.Unlock()

	return handle, nil
}

func (r *Registry) remove(id SessionId) {
	r.mu.Lock()
	delete(r.sessions, id)
	empty := len(r.sessions) == 0
	if r.hasActive && r.active == id {
		r.hasActive = false
		for other := range r.sessions {
			r.active = other
			r.hasActive = true
			break
		}
	}
	r.mu.Unlock()

	if empty && r.OnLastSessionExit != nil {
		r.OnLastSessionExit()
	}
}

// Get returns the session registered under id, if any.
func (r *Registry) Get(id SessionId) (*SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[id]
	return h, ok
}

// List returns every currently registered session.
func (r *Registry) List() []*SessionHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*SessionHandle, 0, len(r.sessions))
	for _, h := range r.sessions {
		out = append(out, h)
	}
	return out
}

// ActiveSession returns the registry's current foreground session.
func (r *Registry) ActiveSession() (*SessionHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.hasActive {
		return nil, false
	}
	h, ok := r.sessions[r.active]
	return h, ok
}

// SetActive changes which registered session is the foreground session.
// No-op if id is not registered.
func (r *Registry) SetActive(id SessionId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		r.active = id
		r.hasActive = true
	}
}

// Subscribe registers fn to receive every Alert this registry's sessions
// publish, returning a handle usable with Unsubscribe.
func (r *Registry) Subscribe(fn func(Alert)) uuid.UUID {
	id := uuid.New()
	r.subMu.Lock()
	r.subs[id] = fn
	r.subMu.Unlock()
	return id
}

// Unsubscribe removes a subscription previously returned by Subscribe.
func (r *Registry) Unsubscribe(id uuid.UUID) {
	r.subMu.Lock()
	delete(r.subs, id)
	r.subMu.Unlock()
}

func (r *Registry) publish(a Alert) {
	r.subMu.RLock()
	defer r.subMu.RUnlock()
	for _, fn := range r.subs {
		fn(a)
	}
}
