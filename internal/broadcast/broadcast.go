// File: internal/broadcast/broadcast.go
// MUD Engine - Broadcast Router (C9)

// Package broadcast fans a localization-keyed message out to every
// affected session, rendering it in each recipient's own locale.
package broadcast

import (
	"mudengine/internal/eventbus"
	"mudengine/internal/locale"
	"mudengine/internal/session"
)

// Router is the sole path by which game logic reaches multiple
// sessions at once.
type Router struct {
	sessions *session.Registry
	bus      *eventbus.Bus
}

// New creates a Router bound to the process-wide session registry and
// event bus.
func New(sessions *session.Registry, bus *eventbus.Bus) *Router {
	return &Router{sessions: sessions, bus: bus}
}

// BroadcastToRoom renders localeKey/args for every authenticated
// session at (x,y), excluding exclude if non-nil.
func (r *Router) BroadcastToRoom(x, y int, localeKey string, args map[string]any, exclude *session.Session) {
	for _, s := range r.sessions.AuthenticatedInRoom(x, y) {
		if exclude != nil && s.ID == exclude.ID {
			continue
		}
		s.IO.WriteLine(locale.Render(locale.Tag(s.Locale()), localeKey, args))
	}
	if r.bus != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.RoomBroadcast, Data: map[string]any{
			"x": x, "y": y, "key": localeKey,
		}})
	}
}

// BroadcastToAll renders localeKey/args for every session (or every
// authenticated session when authenticatedOnly is true).
func (r *Router) BroadcastToAll(localeKey string, args map[string]any, authenticatedOnly bool) {
	sessions := r.sessions.AllAuthenticated()
	if !authenticatedOnly {
		sessions = r.sessions.All()
	}
	for _, s := range sessions {
		s.IO.WriteLine(locale.Render(locale.Tag(s.Locale()), localeKey, args))
	}
}

// SendTo renders localeKey/args for a single session.
func SendTo(s *session.Session, localeKey string, args map[string]any) {
	s.IO.WriteLine(locale.Render(locale.Tag(s.Locale()), localeKey, args))
}
