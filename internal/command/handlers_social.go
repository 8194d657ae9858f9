// File: internal/command/handlers_social.go
// MUD Engine - Command Dispatcher (C4): follow, NPC interaction, shop

package command

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"mudengine/internal/combat"
	"mudengine/internal/database"
	"mudengine/internal/locale"
)

func npcDisplayName(ctx *Context, n *database.NPC) string {
	if loc(ctx) == locale.Korean {
		return n.NameKo
	}
	return n.NameEn
}

func findNPCByName(npcs []*database.NPC, ctx *Context, name string) *database.NPC {
	name = strings.ToLower(name)
	for _, n := range npcs {
		if strings.Contains(strings.ToLower(npcDisplayName(ctx, n)), name) {
			return n
		}
	}
	return nil
}

func cmdFollow(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Follow whom?"}
	}
	if strings.EqualFold(args[0], "stop") {
		ctx.Session.ClearFollowing()
		return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "follow.stopped", nil)}
	}
	target, ok := ctx.Sessions.GetByUsername(args[0])
	if !ok {
		return Result{ResultType: ResultError, Message: locale.Render(loc(ctx), "follow.not_found", nil)}
	}
	ctx.Session.SetFollowing(target.Username())
	return Result{ResultType: ResultSuccess, Message: locale.Render(loc(ctx), "follow.started", map[string]any{"player": target.Username()})}
}

func cmdTalk(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Talk to whom?"}
	}
	x, y := ctx.Session.Coords()
	npc := findNPCByName(ctx.Store.GetNPCsAt(x, y), ctx, strings.Join(args, " "))
	if npc == nil {
		return Result{ResultType: ResultError, Message: "There's no one like that here."}
	}
	var dialogue map[string]string
	_ = json.Unmarshal([]byte(npc.DialogueBlob), &dialogue)
	line := dialogue[string(loc(ctx))]
	if line == "" {
		line = dialogue["en"]
	}
	if line == "" {
		line = fmt.Sprintf("%s has nothing to say.", npcDisplayName(ctx, npc))
	}
	return Result{ResultType: ResultInfo, Message: fmt.Sprintf("%s says: \"%s\"", npcDisplayName(ctx, npc), line)}
}

type shopItem struct {
	NameEn        string `json:"name_en"`
	NameKo        string `json:"name_ko"`
	DescriptionEn string `json:"description_en"`
	DescriptionKo string `json:"description_ko"`
	Category      string `json:"category"`
	Price         int    `json:"price"`
}

func shopInventory(npc *database.NPC) []shopItem {
	var items []shopItem
	_ = json.Unmarshal([]byte(npc.ShopInventoryBlob), &items)
	return items
}

func cmdShop(ctx *Context, args []string) Result {
	x, y := ctx.Session.Coords()
	var merchant *database.NPC
	for _, n := range ctx.Store.GetNPCsAt(x, y) {
		if n.NPCType == "MERCHANT" {
			merchant = n
			break
		}
	}
	if merchant == nil {
		return Result{ResultType: ResultError, Message: "There's no merchant here."}
	}
	items := shopInventory(merchant)

	if len(args) == 0 || strings.EqualFold(args[0], "list") {
		if len(items) == 0 {
			return Result{ResultType: ResultInfo, Message: fmt.Sprintf("%s has nothing for sale.", npcDisplayName(ctx, merchant))}
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%s offers:\r\n", npcDisplayName(ctx, merchant))
		for i, it := range items {
			name := it.NameEn
			if loc(ctx) == locale.Korean {
				name = it.NameKo
			}
			fmt.Fprintf(&b, "  %d) %s - %d gold\r\n", i+1, name, it.Price)
		}
		return Result{ResultType: ResultInfo, Message: b.String()}
	}

	if strings.EqualFold(args[0], "buy") && len(args) > 1 {
		idx, err := strconv.Atoi(args[1])
		if err != nil || idx < 1 || idx > len(items) {
			return Result{ResultType: ResultError, Message: "No such item for sale."}
		}
		item := items[idx-1]

		pid := ctx.Session.PlayerID()
		player, err := database.GetPlayer(pid)
		if err != nil {
			return Result{ResultType: ResultError}
		}
		stats := combat.ParseStats(player.StatsBlob, combat.DefaultPlayerStats())
		if stats.Gold < item.Price {
			return Result{ResultType: ResultError, Message: "You can't afford that."}
		}
		stats.Gold -= item.Price
		if err := database.UpdatePlayerStats(pid, stats.Encode()); err != nil {
			return Result{ResultType: ResultError}
		}

		obj := &database.GameObject{
			NameEn: item.NameEn, NameKo: item.NameKo,
			DescriptionEn: item.DescriptionEn, DescriptionKo: item.DescriptionKo,
			Category: item.Category, LocationType: database.LocationInventory, LocationID: pid,
		}
		if err := ctx.Store.CreateObject(obj); err != nil {
			return Result{ResultType: ResultError}
		}
		return Result{ResultType: ResultSuccess, Message: fmt.Sprintf("You buy %s for %d gold.", objectDisplayName(ctx, obj), item.Price)}
	}

	return Result{ResultType: ResultError, Message: "Usage: shop [list|buy <index>]"}
}

func cmdTrade(ctx *Context, args []string) Result {
	return Result{ResultType: ResultInfo, Message: "Trading is not available here."}
}

func cmdInspect(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return Result{ResultType: ResultError, Message: "Inspect what?"}
	}
	if n, err := strconv.Atoi(args[0]); err == nil {
		if h, ok := ctx.Session.ResolveHandle(n); ok {
			return Result{ResultType: ResultInfo, Message: describeHandle(ctx, h)}
		}
		return Result{ResultType: ResultError, Message: "You don't see that."}
	}
	x, y := ctx.Session.Coords()
	name := strings.Join(args, " ")
	if obj := findByName(ctx.Store.GetObjectsIn(database.LocationRoom, roomIDAt(ctx, x, y)), ctx, name); obj != nil {
		if loc(ctx) == locale.Korean {
			return Result{ResultType: ResultInfo, Message: obj.DescriptionKo}
		}
		return Result{ResultType: ResultInfo, Message: obj.DescriptionEn}
	}
	if npc := findNPCByName(ctx.Store.GetNPCsAt(x, y), ctx, name); npc != nil {
		if loc(ctx) == locale.Korean {
			return Result{ResultType: ResultInfo, Message: npc.DescKo}
		}
		return Result{ResultType: ResultInfo, Message: npc.DescEn}
	}
	return Result{ResultType: ResultError, Message: "You don't see that here."}
}

func roomIDAt(ctx *Context, x, y int) string {
	room := ctx.Store.GetRoomAt(x, y)
	if room == nil {
		return ""
	}
	return room.ID
}

func cmdPlayersHere(ctx *Context, args []string) Result {
	x, y := ctx.Session.Coords()
	var b strings.Builder
	b.WriteString("Also here:\r\n")
	found := false
	for _, s := range ctx.Sessions.AuthenticatedInRoom(x, y) {
		if s.ID == ctx.Session.ID {
			continue
		}
		found = true
		b.WriteString("  " + s.Username() + "\r\n")
	}
	if !found {
		return Result{ResultType: ResultInfo, Message: "You are alone here."}
	}
	return Result{ResultType: ResultInfo, Message: b.String()}
}
