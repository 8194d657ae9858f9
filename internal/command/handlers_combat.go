// File: internal/command/handlers_combat.go
// MUD Engine - Command Dispatcher (C4): combat verbs

package command

import (
	"strings"

	"mudengine/internal/database"
	"mudengine/internal/locale"
)

func cmdAttack(ctx *Context, args []string) Result {
	if ctx.Combat.InCombat(ctx.Session.ID) {
		if !ctx.Combat.SubmitAction(ctx.Session.ID, "attack") {
			return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "combat.only", nil)}
		}
		return Result{ResultType: ResultSuccess}
	}
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "combat.not_found", nil)}
	}
	x, y := ctx.Session.Coords()
	name := strings.ToLower(strings.Join(args, " "))

	var target *database.Monster
	for _, m := range ctx.Store.GetMonstersAt(x, y) {
		if strings.Contains(strings.ToLower(m.NameEn), name) || strings.Contains(strings.ToLower(m.NameKo), name) {
			target = m
			break
		}
	}
	if target == nil {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "combat.not_found", nil)}
	}

	pid := ctx.Session.PlayerID()
	player, err := database.GetPlayer(pid)
	if err != nil {
		return Result{ResultType: ResultError}
	}
	if _, err := ctx.Combat.Start(ctx.Session, player, target); err != nil {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "combat.already_in", nil)}
	}
	return Result{ResultType: ResultSuccess}
}

func cmdDefend(ctx *Context, args []string) Result {
	if !ctx.Combat.SubmitAction(ctx.Session.ID, "defend") {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "combat.only", nil)}
	}
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "combat.defend", map[string]any{"player": ctx.Session.Username()})}
}

func cmdFlee(ctx *Context, args []string) Result {
	if !ctx.Combat.SubmitAction(ctx.Session.ID, "flee") {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "combat.only", nil)}
	}
	return Result{ResultType: ResultSuccess}
}
