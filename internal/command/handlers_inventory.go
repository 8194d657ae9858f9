// File: internal/command/handlers_inventory.go
// MUD Engine - Command Dispatcher (C4): inventory & item verbs

package command

import (
	"fmt"
	"strings"

	"mudengine/internal/database"
	"mudengine/internal/locale"
)

func objectDisplayName(ctx *Context, o *database.GameObject) string {
	if loc(ctx) == locale.Korean {
		return o.NameKo
	}
	return o.NameEn
}

func findByName(objs []*database.GameObject, ctx *Context, name string) *database.GameObject {
	name = strings.ToLower(name)
	for _, o := range objs {
		if strings.Contains(strings.ToLower(objectDisplayName(ctx, o)), name) {
			return o
		}
	}
	return nil
}

func cmdInventory(ctx *Context, args []string) Result {
	pid := ctx.Session.PlayerID()
	items := ctx.Store.GetObjectsIn(database.LocationInventory, pid)
	if len(items) == 0 {
		return Result{ResultType: ResultInfo, Message: locale.Render(loc(ctx), "inventory.empty", nil)}
	}
	var b strings.Builder
	b.WriteString("You are carrying:\r\n")
	for _, o := range items {
		tag := ""
		if o.IsEquipped {
			tag = " (equipped)"
		}
		b.WriteString(fmt.Sprintf("  %s%s\r\n", objectDisplayName(ctx, o), tag))
	}
	return Result{ResultType: ResultInfo, Message: b.String()}
}

func cmdGet(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Get what?"}
	}
	x, y := ctx.Session.Coords()
	room := ctx.Store.GetRoomAt(x, y)
	if room == nil {
		return Result{ResultType: ResultError}
	}
	name := strings.Join(args, " ")
	items := ctx.Store.GetObjectsIn(database.LocationRoom, room.ID)
	target := findByName(items, ctx, name)
	if target == nil {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "get.not_found", nil)}
	}
	pid := ctx.Session.PlayerID()
	if err := ctx.Store.MoveObject(target.ID, database.LocationInventory, pid); err != nil {
		return Result{ResultType: ResultError}
	}
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "get.picked_up", map[string]any{"item": objectDisplayName(ctx, target)})}
}

func cmdDrop(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Drop what?"}
	}
	pid := ctx.Session.PlayerID()
	name := strings.Join(args, " ")
	items := ctx.Store.GetObjectsIn(database.LocationInventory, pid)
	target := findByName(items, ctx, name)
	if target == nil {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "drop.not_found", nil)}
	}
	x, y := ctx.Session.Coords()
	room := ctx.Store.GetRoomAt(x, y)
	if room == nil {
		return Result{ResultType: ResultError}
	}
	if err := ctx.Store.MoveObject(target.ID, database.LocationRoom, room.ID); err != nil {
		return Result{ResultType: ResultError}
	}
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "drop.dropped", map[string]any{"item": objectDisplayName(ctx, target)})}
}

func cmdEquip(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Equip what?"}
	}
	pid := ctx.Session.PlayerID()
	name := strings.Join(args, " ")
	items := ctx.Store.GetObjectsIn(database.LocationInventory, pid)
	target := findByName(items, ctx, name)
	if target == nil {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "equip.not_found", nil)}
	}
	if err := database.SetObjectEquipped(target.ID, true); err != nil {
		return Result{ResultType: ResultError}
	}
	target.IsEquipped = true
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "equip.equipped", map[string]any{"item": objectDisplayName(ctx, target)})}
}

func cmdUnequip(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Unequip what?"}
	}
	pid := ctx.Session.PlayerID()
	name := strings.Join(args, " ")
	items := ctx.Store.GetObjectsIn(database.LocationInventory, pid)
	target := findByName(items, ctx, name)
	if target == nil {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "equip.not_found", nil)}
	}
	if err := database.SetObjectEquipped(target.ID, false); err != nil {
		return Result{ResultType: ResultError}
	}
	target.IsEquipped = false
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "unequip.done", map[string]any{"item": objectDisplayName(ctx, target)})}
}

func cmdUnequipAll(ctx *Context, args []string) Result {
	pid := ctx.Session.PlayerID()
	items := ctx.Store.GetObjectsIn(database.LocationInventory, pid)
	for _, o := range items {
		if !o.IsEquipped {
			continue
		}
		if err := database.SetObjectEquipped(o.ID, false); err != nil {
			continue
		}
		o.IsEquipped = false
	}
	return Result{ResultType: ResultSuccess, Message: "You remove everything you were wearing."}
}
