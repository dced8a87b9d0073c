package hostapi

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/advanceemu/gba/internal/debugger"
	"github.com/advanceemu/gba/internal/emu"
)

// request is one unit of work submitted to a Session's run loop: a
// closure over the live *emu.Machine, and the channel its result is
// delivered back on.
type request struct {
	fn   func(m *emu.Machine) (interface{}, error)
	resp chan result
}

type result struct {
	value interface{}
	err   error
}

// requestQueueCapacity is §5's bounded host-request queue size: 25
// outstanding requests before Submit reports the queue full rather than
// blocking the caller indefinitely.
const requestQueueCapacity = 25

// Session owns one running *emu.Machine plus its breakpoint/watchpoint
// tables, and serializes all access to it through a single run-loop
// goroutine — the same "one thread owns the VM, the host talks to it
// through a channel" shape as the teacher's service.DebuggerService,
// generalized from a synchronous method-call API to the bounded
// request-queue model §5 specifies for a host thread talking to the
// single-threaded cooperative core.
type Session struct {
	ID          string
	CreatedAt   time.Time
	Machine     *emu.Machine
	Breakpoints *debugger.BreakpointSet
	Watchpoints *debugger.WatchpointSet

	reqCh chan request
	frame *frameSlot
	done  chan struct{}
}

// NewSession starts a Session's run loop over m.
func NewSession(id string, m *emu.Machine) *Session {
	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		Machine:     m,
		Breakpoints: debugger.NewBreakpointSet(),
		Watchpoints: debugger.NewWatchpointSet(),
		reqCh:       make(chan request, requestQueueCapacity),
		frame:       newFrameSlot(),
		done:        make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case req := <-s.reqCh:
			v, err := req.fn(s.Machine)
			req.resp <- result{value: v, err: err}
		case <-s.done:
			return
		}
	}
}

// Submit enqueues fn to run on the session's single owning goroutine and
// blocks for its result. It returns ErrRequestQueueFull immediately if
// the queue is saturated (never blocks on enqueue), and
// ErrHostQueueDisconnected if the session was closed before fn's result
// arrived.
func (s *Session) Submit(fn func(m *emu.Machine) (interface{}, error)) (interface{}, error) {
	req := request{fn: fn, resp: make(chan result, 1)}
	select {
	case s.reqCh <- req:
	default:
		return nil, ErrRequestQueueFull
	}

	select {
	case r := <-req.resp:
		return r.value, r.err
	case <-s.done:
		return nil, ErrHostQueueDisconnected
	}
}

// PublishFrame stores the latest rendered frame in the session's
// frameSlot. Called from within a Submit'd closure, so it always
// runs on the session's own goroutine — the "single producer" of the
// one-slot SPSC queue §5 describes for frame delivery to the host.
func (s *Session) PublishFrame(fr *FrameResponse) {
	s.frame.publish(fr)
}

// LatestFrame returns the most recently published frame, or nil before
// the first one is rendered. Safe to call from any goroutine (the
// "single consumer" side).
func (s *Session) LatestFrame() *FrameResponse {
	return s.frame.latest()
}

// Close stops the session's run loop; outstanding or future Submit
// calls fail with ErrHostQueueDisconnected.
func (s *Session) Close() {
	close(s.done)
}

// frameSlot is a one-slot mailbox: Publish always overwrites, Latest
// always returns whatever is currently there. This is the "one-slot
// SPSC queue" §5 calls for frame streaming — dropping an unconsumed
// stale frame is correct behavior, not a bug, since the host only ever
// wants the newest picture.
type frameSlot struct {
	mu    sync.Mutex
	frame *FrameResponse
}

func newFrameSlot() *frameSlot { return &frameSlot{} }

func (f *frameSlot) publish(fr *FrameResponse) {
	f.mu.Lock()
	f.frame = fr
	f.mu.Unlock()
}

func (f *frameSlot) latest() *FrameResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// SessionManager tracks every live Session by ID, grounded on
// api.SessionManager.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager returns an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create registers a new Session wrapping m under a fresh random ID.
func (sm *SessionManager) Create(m *emu.Machine) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, exists := sm.sessions[id]; exists {
		return nil, ErrSessionAlreadyExists
	}
	s := NewSession(id, m)
	sm.sessions[id] = s
	return s, nil
}

// Get looks up a Session by ID.
func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, exists := sm.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Destroy stops and removes a Session.
func (sm *SessionManager) Destroy(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, exists := sm.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}
	s.Close()
	delete(sm.sessions, id)
	return nil
}

// List returns every active session ID.
func (sm *SessionManager) List() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
