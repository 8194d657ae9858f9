// File: internal/command/command.go
// MUD Engine - Command Dispatcher (C4)
//
// Lock/Key Authorization System, inherited from the builder/admin
// command surface this was generalized from:
// commands gate on a simple boolean (IsAdmin) rather than the
// original multi-key scheme, since the spec's admin surface is a
// single flat role.

package command

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"mudengine/internal/eventbus"
	"mudengine/internal/locale"
	"mudengine/internal/session"
)

// ResultType classifies how a handler's outcome should be presented.
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultError
	ResultInfo
)

// Result is what every command handler returns.
type Result struct {
	ResultType       ResultType
	Message          string
	Data             map[string]any
	Broadcast        bool
	BroadcastKey     string
	BroadcastArgs    map[string]any
	RoomOnly         bool // true: room-scoped; false: global
	Disconnect       bool
}

// Handler processes one invocation of a command.
type Handler func(ctx *Context, args []string) Result

// Command is a registered verb.
type Command struct {
	Name         string
	Aliases      []string
	IsAdmin      bool
	RequiresAuth bool
	CombatGate   bool // true: only usable while in combat
	Handler      Handler
	HelpText     string
}

// reservedMovementAliases maps each single-letter direction shortcut to
// the one command name allowed to claim it.
var reservedMovementAliases = map[string]string{
	"n": "north", "s": "south", "e": "east", "w": "west",
}

// Registry holds every registered command, keyed by lowercase name or
// alias.
type Registry struct {
	commands map[string]*Command
	ordered  []*Command
	bus      *eventbus.Bus
}

// NewRegistry creates an empty registry.
func NewRegistry(bus *eventbus.Bus) *Registry {
	return &Registry{commands: make(map[string]*Command), bus: bus}
}

// Register adds a command under its name and every alias. Aliases
// n/s/e/w are reserved for movement; any other command claiming them
// has those entries stripped with a warning.
func (r *Registry) Register(c *Command) {
	r.ordered = append(r.ordered, c)
	r.commands[strings.ToLower(c.Name)] = c
	for _, alias := range c.Aliases {
		alias = strings.ToLower(alias)
		if owner, reserved := reservedMovementAliases[alias]; reserved && c.Name != owner {
			log.Printf("command %q: alias %q is reserved for %q; dropped", c.Name, alias, owner)
			continue
		}
		r.commands[alias] = c
	}
}

func (r *Registry) lookup(name string) (*Command, bool) {
	c, ok := r.commands[strings.ToLower(name)]
	return c, ok
}

// tokenize is shell-like with quote awareness; on a quote error it
// falls back to a plain whitespace split.
func tokenize(input string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	var quoteChar rune
	started := false

	for _, r := range input {
		switch {
		case inQuote:
			if r == quoteChar {
				inQuote = false
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = true
			quoteChar = r
			started = true
		case r == ' ' || r == '\t':
			if started || cur.Len() > 0 {
				tokens = append(tokens, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		// Unterminated quote: fall back to whitespace split of the raw input.
		return strings.Fields(input)
	}
	if started || cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

// Dispatch implements the full C4 algorithm for one line of input.
func (r *Registry) Dispatch(ctx *Context, sess *session.Session, raw string) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return
	}

	if input == "." {
		last := sess.LastCommand()
		if last == "" {
			sess.IO.WriteLine(locale.Render(locale.Tag(sess.Locale()), "repeat.none", nil))
			return
		}
		input = last
	}

	inCombat, combatID := sess.InCombat()
	if inCombat {
		switch input {
		case "1":
			input = "attack"
		case "2":
			input = "defend"
		case "3":
			input = "flee"
		}
	}

	tokens := tokenize(input)
	if len(tokens) == 0 {
		return
	}
	name := strings.ToLower(tokens[0])
	args := tokens[1:]

	cmd, ok := r.lookup(name)
	if !ok {
		sess.IO.WriteLine(locale.Render(locale.Tag(sess.Locale()), "unknown.command", map[string]any{"cmd": name}))
		return
	}

	if cmd.CombatGate && !inCombat {
		sess.IO.WriteLine(locale.Render(locale.Tag(sess.Locale()), "combat.only", nil))
		return
	}
	if cmd.IsAdmin && !sess.IsAdmin() {
		sess.IO.WriteLine(locale.Render(locale.Tag(sess.Locale()), "admin.denied", nil))
		return
	}

	if r.bus != nil {
		r.bus.Publish(eventbus.Event{Kind: eventbus.PlayerCommand, Source: sess.Username(),
			Data: map[string]any{"command": name, "args": args, "combat_id": combatID}})
	}

	res := cmd.Handler(ctx.For(sess), args)

	if res.Message != "" {
		sess.IO.WriteLine(res.Message)
	}
	if res.Broadcast && ctx.Broadcaster != nil {
		x, y := sess.Coords()
		if res.RoomOnly {
			ctx.Broadcaster.BroadcastToRoom(x, y, res.BroadcastKey, res.BroadcastArgs, sess)
		} else {
			ctx.Broadcaster.BroadcastToAll(res.BroadcastKey, res.BroadcastArgs, true)
		}
	}
	if res.Disconnect {
		sess.IO.Close("quit")
		return
	}
	if res.ResultType != ResultError && input != "." {
		sess.SetLastCommand(input)
	}
}

// Help renders the help listing: the combat-only subset while in
// combat, otherwise every command the caller's admin gate satisfies.
func (r *Registry) Help(sess *session.Session) string {
	var b strings.Builder
	b.WriteString(locale.Render(locale.Tag(sess.Locale()), "help.header", nil) + "\r\n")

	seen := make(map[string]bool)
	inCombat, _ := sess.InCombat()

	names := make([]string, 0, len(r.ordered))
	byName := make(map[string]*Command, len(r.ordered))
	for _, c := range r.ordered {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		if inCombat && !c.CombatGate {
			continue
		}
		if !inCombat && c.CombatGate {
			continue
		}
		if c.IsAdmin && !sess.IsAdmin() {
			continue
		}
		names = append(names, c.Name)
		byName[c.Name] = c
	}
	sort.Strings(names)
	for _, n := range names {
		c := byName[n]
		b.WriteString(fmt.Sprintf("  %-12s %s\r\n", c.Name, c.HelpText))
	}
	return b.String()
}
