// File: internal/session/registry.go
// MUD Engine - Session Registry

package session

import (
	"log"
	"sync"
	"time"

	"mudengine/internal/eventbus"
)

// Registry tracks every live session and enforces the one-session-per-
// player invariant.
type Registry struct {
	log *log.Logger
	bus *eventbus.Bus

	mu           sync.RWMutex
	byID         map[string]*Session
	byPlayerID   map[string]*Session
	idleTimeout  time.Duration
	reaperPeriod time.Duration

	stopCh chan struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry(bus *eventbus.Bus, idleTimeout, reaperPeriod time.Duration, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(nopWriter{}, "[session] ", log.LstdFlags)
	}
	return &Registry{
		log:          logger,
		bus:          bus,
		byID:         make(map[string]*Session),
		byPlayerID:   make(map[string]*Session),
		idleTimeout:  idleTimeout,
		reaperPeriod: reaperPeriod,
		stopCh:       make(chan struct{}),
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// Add registers a newly-connected (pre-auth) session.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
}

// Remove drops a session from the registry on disconnect.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, s.ID)
	if pid := s.PlayerID(); pid != "" {
		if cur, ok := r.byPlayerID[pid]; ok && cur == s {
			delete(r.byPlayerID, pid)
		}
	}
}

// BindPlayer associates an authenticated session with its player id,
// enforcing the duplicate-login invariant: any existing session for
// that player is notified and closed first.
func (r *Registry) BindPlayer(s *Session, playerID string) {
	r.mu.Lock()
	old, exists := r.byPlayerID[playerID]
	r.byPlayerID[playerID] = s
	r.mu.Unlock()

	if exists && old != s {
		old.IO.WriteLine("You have logged in from another location.")
		old.IO.Close("duplicate_login")
	}
}

// Get returns the session for a given session id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

// GetByPlayerID returns the live session for a player, if any.
func (r *Registry) GetByPlayerID(playerID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byPlayerID[playerID]
	return s, ok
}

// GetByUsername finds the live session for a username (case-sensitive,
// matches what was stored at auth time).
func (r *Registry) GetByUsername(username string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byID {
		if s.Username() == username {
			return s, true
		}
	}
	return nil, false
}

// AuthenticatedInRoom returns every authenticated session whose
// coordinates match (x,y).
func (r *Registry) AuthenticatedInRoom(x, y int) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.byID {
		if s.State() != StateAuthenticated {
			continue
		}
		sx, sy := s.Coords()
		if sx == x && sy == y {
			out = append(out, s)
		}
	}
	return out
}

// AllAuthenticated returns every authenticated session.
func (r *Registry) AllAuthenticated() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.byID {
		if s.State() == StateAuthenticated {
			out = append(out, s)
		}
	}
	return out
}

// FollowersOf returns every authenticated session following username
// and currently at (x,y).
func (r *Registry) FollowersOf(username string, x, y int) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, s := range r.byID {
		if s.State() != StateAuthenticated {
			continue
		}
		if s.FollowingPlayer() != username {
			continue
		}
		sx, sy := s.Coords()
		if sx == x && sy == y {
			out = append(out, s)
		}
	}
	return out
}

// All returns every live session, authenticated or not.
func (r *Registry) All() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Session, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// RunReaper blocks, periodically closing sessions idle beyond the
// configured timeout, until stopCh fires.
func (r *Registry) RunReaper() {
	ticker := time.NewTicker(r.reaperPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.reapOnce()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Registry) reapOnce() {
	r.mu.RLock()
	var stale []*Session
	for _, s := range r.byID {
		if r.idleTimeout > 0 && s.IdleFor() > r.idleTimeout {
			stale = append(stale, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range stale {
		r.log.Printf("reaping idle session %s (player %s)", s.ID, s.Username())
		s.IO.WriteLine("Connection closed due to inactivity.")
		s.IO.Close("idle_timeout")
	}
}

// Stop halts the reaper loop.
func (r *Registry) Stop() {
	close(r.stopCh)
}

// Broadcast publishes an event of the given kind, source and data on
// the bus.
func (r *Registry) Broadcast(kind eventbus.Kind, source string, data map[string]any) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(eventbus.Event{Kind: kind, Source: source, Data: data})
}
