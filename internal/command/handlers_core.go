// File: internal/command/handlers_core.go
// MUD Engine - Command Dispatcher (C4): movement, look, social, meta

package command

import (
	"fmt"
	"strings"
	"time"

	"mudengine/internal/database"
	"mudengine/internal/locale"
	"mudengine/internal/session"
)

func loc(ctx *Context) locale.Tag { return locale.Tag(ctx.Session.Locale()) }

func cmdMove(dir string) Handler {
	return func(ctx *Context, args []string) Result {
		if err := ctx.Mover.MovePlayerByDirection(ctx.Session, dir, false); err != nil {
			return Result{ResultType: ResultError}
		}
		return Result{ResultType: ResultSuccess}
	}
}

func cmdLook(ctx *Context, args []string) Result {
	if len(args) > 0 {
		var n int
		if _, err := fmt.Sscanf(args[0], "%d", &n); err == nil {
			if h, ok := ctx.Session.ResolveHandle(n); ok {
				return Result{ResultType: ResultInfo, Message: describeHandle(ctx, h)}
			}
		}
	}
	ctx.Mover.RenderRoomView(ctx.Session)
	return Result{ResultType: ResultSuccess}
}

func describeHandle(ctx *Context, h session.RoomHandle) string {
	switch h.Kind {
	case "object":
		if o, err := database.GetObject(h.ID); err == nil {
			if loc(ctx) == locale.Korean {
				return o.DescriptionKo
			}
			return o.DescriptionEn
		}
	case "player":
		if p, err := database.GetPlayer(h.ID); err == nil {
			return p.DisplayName
		}
	case "npc":
		for _, n := range ctx.Store.GetNPCsAt(ctx.Session.Coords()) {
			if n.ID == h.ID {
				if loc(ctx) == locale.Korean {
					return n.DescKo
				}
				return n.DescEn
			}
		}
	case "monster":
		for _, m := range ctx.Store.GetMonstersAt(ctx.Session.Coords()) {
			if m.ID == h.ID {
				if loc(ctx) == locale.Korean {
					return m.DescKo
				}
				return m.DescEn
			}
		}
	}
	return "You see nothing special."
}

func cmdSay(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Say what?"}
	}
	msg := strings.Join(args, " ")
	return Result{
		ResultType: ResultSuccess,
		Message:    locale.Render(loc(ctx), "say.you_say", map[string]any{"msg": msg}),
		Broadcast:  true, RoomOnly: true,
		BroadcastKey: "say.player_says", BroadcastArgs: map[string]any{"player": ctx.Session.Username(), "msg": msg},
	}
}

func cmdWhisper(ctx *Context, args []string) Result {
	if len(args) < 2 {
		return Result{ResultType: ResultError, Message: "Usage: whisper <player> <message>"}
	}
	target := args[0]
	msg := strings.Join(args[1:], " ")

	targetSess, ok := ctx.Sessions.GetByUsername(target)
	if !ok {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "whisper.not_found", nil)}
	}
	targetSess.IO.WriteLine(locale.Render(locale.Tag(targetSess.Locale()), "whisper.received",
		map[string]any{"player": ctx.Session.Username(), "msg": msg}))
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "whisper.you", map[string]any{"player": target, "msg": msg})}
}

func cmdEmote(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Emote what?"}
	}
	text := strings.Join(args, " ")
	return Result{
		ResultType: ResultSuccess,
		Message:    locale.Render(loc(ctx), "emote.generic", map[string]any{"player": "You", "text": text}),
		Broadcast:  true, RoomOnly: true,
		BroadcastKey: "emote.generic", BroadcastArgs: map[string]any{"player": ctx.Session.Username(), "text": text},
	}
}

func cmdWho(ctx *Context, args []string) Result {
	var b strings.Builder
	b.WriteString("Players online:\r\n")
	for _, s := range ctx.Sessions.AllAuthenticated() {
		b.WriteString("  " + s.Username() + "\r\n")
	}
	return Result{ResultType: ResultInfo, Message: b.String()}
}

func cmdHelp(registry *Registry) Handler {
	return func(ctx *Context, args []string) Result {
		if len(args) > 0 {
			if c, ok := registry.lookup(args[0]); ok && (!c.IsAdmin || ctx.Session.IsAdmin()) {
				return Result{ResultType: ResultInfo, Message: fmt.Sprintf("%s: %s", c.Name, c.HelpText)}
			}
			return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "unknown.command", map[string]any{"cmd": args[0]})}
		}
		return Result{ResultType: ResultInfo, Message: registry.Help(ctx.Session)}
	}
}

func cmdLanguage(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: language <en|ko>"}
	}
	tag := locale.Normalize(locale.Tag(args[0]))
	ctx.Session.SetLocale(string(tag))
	if pid := ctx.Session.PlayerID(); pid != "" {
		database.UpdatePlayerLocale(pid, string(tag))
	}
	return Result{ResultType: ResultSuccess, Message: fmt.Sprintf("Language set to %s.", tag)}
}

const renameCooldown = 24 * time.Hour

func cmdChangeName(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: changename <name>"}
	}
	newName := strings.Join(args, " ")
	if !isValidDisplayName(newName) {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "rename.invalid", nil)}
	}

	pid := ctx.Session.PlayerID()
	player, err := database.GetPlayer(pid)
	if err != nil {
		return Result{ResultType: ResultError}
	}

	if !ctx.Session.IsAdmin() && player.LastNameChange.Valid {
		elapsed := time.Since(player.LastNameChange.Time)
		if elapsed < renameCooldown {
			remaining := (renameCooldown - elapsed).Round(time.Minute)
			return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "rename.cooldown", map[string]any{"remaining": remaining})}
		}
	}

	// Admins bypass the cooldown, and an admin's rename leaves the
	// last_name_change stamp untouched; a non-admin's successful rename
	// stamps it.
	skipStamp := ctx.Session.IsAdmin()
	if err := database.UpdatePlayerDisplayName(pid, newName, skipStamp); err != nil {
		return Result{ResultType: ResultError}
	}
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "rename.success", map[string]any{"name": newName})}
}

func isValidDisplayName(name string) bool {
	if len(name) < 3 || len(name) > 20 {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
		case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		default:
			return false
		}
	}
	return true
}

func cmdStats(ctx *Context, args []string) Result {
	pid := ctx.Session.PlayerID()
	player, err := database.GetPlayer(pid)
	if err != nil {
		return Result{ResultType: ResultError}
	}
	return Result{ResultType: ResultInfo, Message: fmt.Sprintf("%s\r\nStats: %s\r\n", player.DisplayName, player.StatsBlob)}
}

func cmdQuit(ctx *Context, args []string) Result {
	return Result{ResultType: ResultSuccess, Message: "Goodbye!", Disconnect: true}
}
