// File: internal/command/handlers_admin.go
// MUD Engine - Admin Surface (C10)

package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mudengine/internal/apperrors"
	"mudengine/internal/database"
	"mudengine/internal/eventbus"
	"mudengine/internal/locale"
)

// renderErr turns a *apperrors.GameError into a localized message for
// the issuing admin, falling back to its raw text for anything else.
func renderErr(ctx *Context, err error) string {
	var ge *apperrors.GameError
	if errors.As(err, &ge) {
		return locale.Render(loc(ctx), ge.LocaleKey, ge.Args)
	}
	return err.Error()
}

func publishWorldUpdated(ctx *Context, what string, data map[string]any) {
	if ctx.Bus == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["what"] = what
	ctx.Bus.Publish(eventbus.Event{Kind: eventbus.WorldUpdated, Source: ctx.Session.Username(), Data: data})
}

func cmdGoto(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: goto <room-id>"}
	}
	room, err := ctx.Store.GetRoom(args[0])
	if err != nil {
		return Result{ResultType: ResultError, Message: renderErr(ctx, err)}
	}
	ctx.Session.SetCoords(room.X, room.Y)
	if pid := ctx.Session.PlayerID(); pid != "" {
		database.UpdatePlayerLocation(pid, room.ID)
	}
	ctx.Mover.RenderRoomView(ctx.Session)
	return Result{ResultType: ResultSuccess}
}

func cmdKick(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: kick <player> [reason]"}
	}
	target, ok := ctx.Sessions.GetByUsername(args[0])
	if !ok {
		return Result{ResultType: ResultError, Message: "That player is not online."}
	}
	if target == ctx.Session || target.IsAdmin() {
		return Result{ResultType: ResultError, Message: "You cannot kick yourself or another administrator."}
	}
	reason := "Disconnected by an administrator."
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}
	target.IO.WriteLine(reason)
	target.IO.Close("kicked")
	return Result{ResultType: ResultSuccess, Message: fmt.Sprintf("Kicked %s.", target.Username())}
}

func cmdCreateRoom(ctx *Context, args []string) Result {
	if len(args) < 3 {
		return Result{ResultType: ResultError, Message: "Usage: createroom <x> <y> <title>"}
	}
	x, err1 := strconv.Atoi(args[0])
	y, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return Result{ResultType: ResultError, Message: "x and y must be integers."}
	}
	if ctx.Store.GetRoomAt(x, y) != nil {
		return Result{ResultType: ResultError, Message: "A room already exists at that coordinate."}
	}
	title := strings.Join(args[2:], " ")
	room := &database.Room{X: x, Y: y, TitleEn: title, TitleKo: title, DescriptionEn: "An unfinished room.", DescriptionKo: "An unfinished room."}
	if err := ctx.Store.CreateRoom(room); err != nil {
		return Result{ResultType: ResultError}
	}
	publishWorldUpdated(ctx, "room_created", map[string]any{"room_id": room.ID})
	return Result{ResultType: ResultSuccess, Message: fmt.Sprintf("Created room %s at (%d,%d).", room.ID, x, y)}
}

func cmdEditRoom(ctx *Context, args []string) Result {
	if len(args) < 3 {
		return Result{ResultType: ResultError, Message: "Usage: editroom <room-id> <title|desc> <text>"}
	}
	room, err := ctx.Store.GetRoom(args[0])
	if err != nil {
		return Result{ResultType: ResultError, Message: renderErr(ctx, err)}
	}
	field := strings.ToLower(args[1])
	text := strings.Join(args[2:], " ")
	switch field {
	case "title":
		room.TitleEn, room.TitleKo = text, text
	case "desc", "description":
		room.DescriptionEn, room.DescriptionKo = text, text
	default:
		return Result{ResultType: ResultError, Message: "Field must be title or desc."}
	}
	if err := ctx.Store.UpdateRoom(room); err != nil {
		return Result{ResultType: ResultError}
	}
	publishWorldUpdated(ctx, "room_edited", map[string]any{"room_id": room.ID})
	return Result{ResultType: ResultSuccess, Message: "Room updated."}
}

func cmdCreateExit(ctx *Context, args []string) Result {
	if len(args) < 5 {
		return Result{ResultType: ResultError, Message: "Usage: createexit <fromX> <fromY> <toX> <toY> <keyword>"}
	}
	coords := make([]int, 4)
	for i := 0; i < 4; i++ {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return Result{ResultType: ResultError, Message: "Coordinates must be integers."}
		}
		coords[i] = n
	}
	conn := database.Connection{FromX: coords[0], FromY: coords[1], ToX: coords[2], ToY: coords[3], Keyword: args[4]}
	if err := ctx.Store.CreateConnection(conn); err != nil {
		return Result{ResultType: ResultError, Message: renderErr(ctx, err)}
	}
	publishWorldUpdated(ctx, "exit_created", map[string]any{"keyword": conn.Keyword})
	return Result{ResultType: ResultSuccess, Message: "Exit created."}
}

func cmdCreateObject(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: createobject <name>"}
	}
	name := strings.Join(args, " ")
	x, y := ctx.Session.Coords()
	room := ctx.Store.GetRoomAt(x, y)
	if room == nil {
		return Result{ResultType: ResultError}
	}
	obj := &database.GameObject{
		NameEn: name, NameKo: name,
		DescriptionEn: "A nondescript object.", DescriptionKo: "A nondescript object.",
		Category: "misc", LocationType: database.LocationRoom, LocationID: room.ID,
	}
	if err := ctx.Store.CreateObject(obj); err != nil {
		return Result{ResultType: ResultError}
	}
	publishWorldUpdated(ctx, "object_created", map[string]any{"object_id": obj.ID})
	return Result{ResultType: ResultSuccess, Message: fmt.Sprintf("Created %s here.", name)}
}

func cmdSpawnMonster(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: spawnmonster <template-id>"}
	}
	x, y := ctx.Session.Coords()
	m, err := ctx.Lifecycle.SpawnAt(args[0], x, y)
	if err != nil {
		return Result{ResultType: ResultError, Message: err.Error()}
	}
	publishWorldUpdated(ctx, "monster_spawned", map[string]any{"monster_id": m.ID})
	return Result{ResultType: ResultSuccess, Message: fmt.Sprintf("Spawned %s here.", m.NameEn)}
}

func cmdScheduler(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: scheduler <list|info|enable|disable> [name]"}
	}
	switch strings.ToLower(args[0]) {
	case "list":
		var b strings.Builder
		for _, e := range ctx.Scheduler.List() {
			status := "disabled"
			if e.Enabled {
				status = "enabled"
			}
			fmt.Fprintf(&b, "  %s (%s) runs=%d errors=%d\r\n", e.Name, status, e.RunCount, e.ErrorCount)
		}
		if b.Len() == 0 {
			return Result{ResultType: ResultInfo, Message: "No registered events."}
		}
		return Result{ResultType: ResultInfo, Message: b.String()}

	case "info":
		if len(args) < 2 {
			return Result{ResultType: ResultError, Message: "Usage: scheduler info <name>"}
		}
		e, ok := ctx.Scheduler.Info(args[1])
		if !ok {
			return Result{ResultType: ResultError, Message: "No such event."}
		}
		return Result{ResultType: ResultInfo, Message: fmt.Sprintf("%s: enabled=%v intervals=%v runs=%d errors=%d last_run=%s",
			e.Name, e.Enabled, e.Intervals, e.RunCount, e.ErrorCount, e.LastRun)}

	case "enable":
		if len(args) < 2 || !ctx.Scheduler.Enable(args[1]) {
			return Result{ResultType: ResultError, Message: "No such event."}
		}
		return Result{ResultType: ResultSuccess, Message: "Enabled."}

	case "disable":
		if len(args) < 2 || !ctx.Scheduler.Disable(args[1]) {
			return Result{ResultType: ResultError, Message: "No such event."}
		}
		return Result{ResultType: ResultSuccess, Message: "Disabled."}
	}
	return Result{ResultType: ResultError, Message: "Unknown scheduler subcommand."}
}

func cmdWorld(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Usage: world <validate|repair>"}
	}
	switch strings.ToLower(args[0]) {
	case "validate", "repair":
		if err := ctx.Store.IntegritySweep(); err != nil {
			return Result{ResultType: ResultError, Message: err.Error()}
		}
		publishWorldUpdated(ctx, "integrity_sweep", nil)
		return Result{ResultType: ResultSuccess, Message: "Integrity sweep complete."}
	}
	return Result{ResultType: ResultError, Message: "Usage: world <validate|repair>"}
}
