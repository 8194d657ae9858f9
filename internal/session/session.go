// File: internal/session/session.go
// MUD Engine - Session Layer (C3)

// Package session owns the per-connection finite state machine:
// Connected -> Menu -> Authenticated -> disconnected. It depends only
// on the LineIO abstraction so the transport (telnet, or anything else)
// can be swapped without touching game logic.
package session

import (
	"sync"
	"time"
)

// State is a session's position in the auth FSM.
type State int

const (
	StateConnected State = iota
	StateMenu
	StateAuthenticating
	StateAuthenticated
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateMenu:
		return "menu"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// LineIO is the abstraction the session core consumes from a
// transport. A transport (telnet, websocket, in-process pipe for
// tests) implements this.
type LineIO interface {
	ReadLine(timeout time.Duration) (string, bool) // ok=false means timeout or close
	WriteLine(text string)
	EnableEcho()
	DisableEcho()
	Close(reason string)
}

// RoomHandle maps the numeric handle a player typed ("look 3") back to
// the entity it referred to in the last rendered room view.
type RoomHandle struct {
	Kind string // "player", "object", "npc", "monster"
	ID   string
}

// Session is one connected player's live state; every field is guarded
// by mu. The session's own game-loop task sets the identity, state and
// handle table; the combat engine also sets the combat flags and, when
// the player dies, the coordinates.
type Session struct {
	ID   string
	IO   LineIO
	Conn string // remote address, for logging

	mu sync.RWMutex

	state    State
	playerID string
	username string
	isAdmin  bool
	locale   string

	x, y int

	authAttempts int
	lastCommand  string

	followingPlayer string

	inCombat bool
	combatID string

	defending bool

	handles map[int]RoomHandle

	createdAt    time.Time
	lastActivity time.Time
}

// New creates a fresh session in the Connected state.
func New(id string, io LineIO, conn string) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		IO:           io,
		Conn:         conn,
		state:        StateConnected,
		locale:       "en",
		handles:      make(map[int]RoomHandle),
		createdAt:    now,
		lastActivity: now,
	}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) SetState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

func (s *Session) PlayerID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerID
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Authenticate transitions the session into the Authenticated state
// bound to the given player identity.
func (s *Session) Authenticate(playerID, username string, isAdmin bool, loc string, x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAuthenticated
	s.playerID = playerID
	s.username = username
	s.isAdmin = isAdmin
	s.locale = loc
	s.x, s.y = x, y
	s.authAttempts = 0
}

func (s *Session) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAdmin
}

func (s *Session) Locale() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.locale
}

func (s *Session) SetLocale(loc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locale = loc
}

// Coords returns the session's current room coordinates.
func (s *Session) Coords() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.x, s.y
}

// SetCoords updates the session's room coordinates. Called by
// movement, the admin goto verb, and the combat engine's death respawn.
func (s *Session) SetCoords(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

// AuthAttempts returns the current failed-login counter.
func (s *Session) AuthAttempts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authAttempts
}

// IncAuthAttempt increments the failed-login counter and returns the
// new value.
func (s *Session) IncAuthAttempt() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authAttempts++
	return s.authAttempts
}

// LastCommand returns the stored raw input for `.` repeat.
func (s *Session) LastCommand() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCommand
}

func (s *Session) SetLastCommand(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCommand = raw
}

// FollowingPlayer returns the username this session is following, or "".
// Owned by this session; readers elsewhere should tolerate stale reads.
func (s *Session) FollowingPlayer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.followingPlayer
}

func (s *Session) SetFollowing(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followingPlayer = username
}

func (s *Session) ClearFollowing() {
	s.SetFollowing("")
}

// InCombat reports whether the session is presently engaged, and its
// combat id.
func (s *Session) InCombat() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inCombat, s.combatID
}

// EnterCombat is called exclusively by the combat engine, which owns
// this flag pair.
func (s *Session) EnterCombat(combatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inCombat = true
	s.combatID = combatID
}

func (s *Session) ExitCombat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inCombat = false
	s.combatID = ""
	s.defending = false
}

func (s *Session) Defending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defending
}

func (s *Session) SetDefending(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defending = v
}

// SetHandles replaces the numeric-handle table after a room view render.
func (s *Session) SetHandles(h map[int]RoomHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles = h
}

// ResolveHandle looks up a numeric handle from the last room view.
func (s *Session) ResolveHandle(n int) (RoomHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handles[n]
	return h, ok
}

// Touch records activity for the idle-session reaper.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
}

// IdleFor reports how long the session has been without activity.
func (s *Session) IdleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActivity)
}
