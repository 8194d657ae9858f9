// File: internal/command/context.go
// MUD Engine - Command Dispatcher (C4): shared handler dependencies

package command

import (
	"mudengine/internal/broadcast"
	"mudengine/internal/combat"
	"mudengine/internal/config"
	"mudengine/internal/eventbus"
	"mudengine/internal/monster"
	"mudengine/internal/movement"
	"mudengine/internal/scheduler"
	"mudengine/internal/session"
	"mudengine/internal/world"
)

// Context bundles every dependency a command handler might need. One
// Context is shared by the whole server; per-call state lives on the
// Session passed alongside it.
type Context struct {
	Store       *world.Store
	Sessions    *session.Registry
	Bus         *eventbus.Bus
	Broadcaster *broadcast.Router
	Mover       *movement.Mover
	Combat      *combat.Engine
	Lifecycle   *monster.Lifecycle
	Scheduler   *scheduler.Scheduler
	Config      *config.Config

	Session *session.Session // the session currently being dispatched
}

// For lets a handler build a per-session Context view without
// mutating the shared one (handlers receive ctx already bound to the
// dispatching session by Dispatch).
func (c *Context) For(sess *session.Session) *Context {
	clone := *c
	clone.Session = sess
	return &clone
}
