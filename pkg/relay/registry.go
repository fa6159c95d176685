package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/voxcal/voxcal/pkg/agent"
)

// Registry owns the mapping from external session identifiers to live agent
// sessions. Sessions are created on first use through the injected factory
// and live exactly as long as the client connection that acquired them.
type Registry struct {
	factory agent.Factory

	mu       sync.Mutex
	sessions map[string]agent.Session
}

func NewRegistry(factory agent.Factory) *Registry {
	return &Registry{
		factory:  factory,
		sessions: make(map[string]agent.Session),
	}
}

// Acquire creates the agent session for sessionID and registers it. A stale
// entry under the same identifier (a client that reconnected before its old
// connection finished tearing down) is closed and replaced.
func (r *Registry) Acquire(ctx context.Context, sessionID string, audio bool) (agent.Session, error) {
	if r == nil || r.factory == nil {
		return nil, fmt.Errorf("session registry is not configured")
	}

	session, err := r.factory.NewSession(ctx, sessionID, audio)
	if err != nil {
		return nil, fmt.Errorf("start agent session %q: %w", sessionID, err)
	}

	r.mu.Lock()
	old := r.sessions[sessionID]
	r.sessions[sessionID] = session
	r.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return session, nil
}

// Release removes the registry entry for sessionID and closes its session,
// provided the entry still belongs to the caller.
func (r *Registry) Release(sessionID string, session agent.Session) {
	if r == nil {
		return
	}
	r.mu.Lock()
	if r.sessions[sessionID] == session {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()

	if session != nil {
		_ = session.Close()
	}
}

// Count reports the number of registered sessions.
func (r *Registry) Count() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Lookup returns the live session for sessionID, if any.
func (r *Registry) Lookup(sessionID string) (agent.Session, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}
