package channel

import (
	"fmt"
	"sync"

	"avaneesh/dnp3-go/pkg/link"
)

// Session represents a master or outstation session on a channel. Each
// Session owns its own *link.LinkLayer; the router's only job is handing
// inbound frames to the right one and letting each look after its own
// state machine.
type Session interface {
	// OnReceive is called for every frame addressed to this session,
	// already CRC-checked and FT3-decoded by the channel's read loop.
	OnReceive(header link.LinkHeaderFields, userdata []byte) error

	// LinkAddress returns the link address for this session.
	LinkAddress() uint16

	// Type returns the type of session.
	Type() SessionType
}

// SessionType identifies the type of session.
type SessionType int

const (
	SessionTypeMaster SessionType = iota
	SessionTypeOutstation
)

// String returns string representation of SessionType.
func (t SessionType) String() string {
	switch t {
	case SessionTypeMaster:
		return "Master"
	case SessionTypeOutstation:
		return "Outstation"
	default:
		return "Unknown"
	}
}

// Router routes link frames to appropriate sessions based on address.
// Supports multi-drop configurations.
type Router struct {
	sessions map[uint16]Session // Key: link address
	mu       sync.RWMutex
}

// NewRouter creates a new router.
func NewRouter() *Router {
	return &Router{
		sessions: make(map[uint16]Session),
	}
}

// AddSession adds a session to the router.
func (r *Router) AddSession(session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	addr := session.LinkAddress()

	if _, exists := r.sessions[addr]; exists {
		return fmt.Errorf("session with address %d already exists", addr)
	}

	r.sessions[addr] = session
	return nil
}

// RemoveSession removes a session from the router.
func (r *Router) RemoveSession(address uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, address)
}

// Route hands a decoded frame to the session registered at its
// destination address. Returns an error if no session is registered
// there; the caller (the channel's read loop) logs and drops the frame.
func (r *Router) Route(header link.LinkHeaderFields, userdata []byte) error {
	r.mu.RLock()
	session, exists := r.sessions[header.Dest]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no session found for address %d", header.Dest)
	}

	return session.OnReceive(header, userdata)
}

// GetSession returns a session by address.
func (r *Router) GetSession(address uint16) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[address]
	return session, exists
}

// GetSessionCount returns the number of active sessions.
func (r *Router) GetSessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Clear removes all sessions.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[uint16]Session)
}

// ForEach calls fn once per registered session. Used to broadcast
// connection-state transitions, which apply to every session sharing the
// channel rather than to a single addressed frame.
func (r *Router) ForEach(fn func(Session)) {
	r.mu.RLock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		fn(s)
	}
}
