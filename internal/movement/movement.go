// File: internal/movement/movement.go
// MUD Engine - Movement & Visibility (C5)

package movement

import (
	"fmt"
	"sort"
	"strings"

	"mudengine/internal/broadcast"
	"mudengine/internal/combat"
	"mudengine/internal/database"
	"mudengine/internal/eventbus"
	"mudengine/internal/locale"
	"mudengine/internal/monster"
	"mudengine/internal/scheduler"
	"mudengine/internal/session"
	"mudengine/internal/telnet"
	"mudengine/internal/world"
)

// Mover bundles the dependencies movement needs: the world store, the
// session registry, the event bus, the broadcast router, the combat
// engine (for the post-arrival aggro check), and the scheduler (for
// the room view's day/night line).
type Mover struct {
	Store     *world.Store
	Sessions  *session.Registry
	Bus       *eventbus.Bus
	Broadcast *broadcast.Router
	Combat    *combat.Engine
	Scheduler *scheduler.Scheduler
}

// neutralFactions lists the unordered faction pairs that read as
// neutral rather than hostile despite not matching the viewer's own
// faction. Anything not identical and not listed here is hostile.
var neutralFactions = map[[2]string]bool{
	{"adventurer", "neutral"}: true,
	{"neutral", "adventurer"}: true,
	{"adventurer", "merchant"}: true,
	{"merchant", "adventurer"}: true,
}

// factionRelation buckets other's faction relative to self's per
// spec §4.5: identical is friendly, a listed pair is neutral, anything
// else is hostile.
func factionRelation(self, other string) string {
	if self == other {
		return "friendly"
	}
	if neutralFactions[[2]string{self, other}] {
		return "neutral"
	}
	return "hostile"
}

// MovePlayerByDirection implements spec §4.5. skipFollowers prevents
// infinite recursion when this call is itself a follower propagation.
func (m *Mover) MovePlayerByDirection(sess *session.Session, dir string, skipFollowers bool) error {
	if inCombat, _ := sess.InCombat(); inCombat {
		sess.IO.WriteLine(locale.Render(locale.Tag(sess.Locale()), "move.in_combat", nil))
		return fmt.Errorf("in combat")
	}

	x, y := sess.Coords()
	curRoom := m.Store.GetRoomAt(x, y)
	if curRoom == nil {
		return fmt.Errorf("session has no valid room at (%d,%d)", x, y)
	}

	exits, err := m.Store.ComputeExits(curRoom.ID)
	if err != nil {
		return err
	}
	destID, ok := exits[world.Direction(dir)]
	if !ok {
		sess.IO.WriteLine(locale.Render(locale.Tag(sess.Locale()), "move.no_exit", nil))
		return fmt.Errorf("no exit %s", dir)
	}
	destRoom, err := m.Store.GetRoom(destID)
	if err != nil {
		return err
	}

	sess.SetCoords(destRoom.X, destRoom.Y)
	if pid := sess.PlayerID(); pid != "" {
		database.UpdatePlayerLocation(pid, destRoom.ID)
	}

	if m.Bus != nil {
		m.Bus.Publish(eventbus.Event{Kind: eventbus.RoomLeft, Source: sess.Username(), RoomID: curRoom.ID})
		m.Bus.Publish(eventbus.Event{Kind: eventbus.RoomEntered, Source: sess.Username(), RoomID: destRoom.ID})
	}
	if m.Broadcast != nil {
		m.Broadcast.BroadcastToRoom(curRoom.X, curRoom.Y, "room.leave", map[string]any{"player": sess.Username()}, sess)
		m.Broadcast.BroadcastToRoom(destRoom.X, destRoom.Y, "room.enter", map[string]any{"player": sess.Username()}, sess)
	}

	if !skipFollowers {
		for _, follower := range m.Sessions.FollowersOf(sess.Username(), curRoom.X, curRoom.Y) {
			if err := m.MovePlayerByDirection(follower, dir, true); err != nil {
				follower.ClearFollowing()
				follower.IO.WriteLine(locale.Render(locale.Tag(follower.Locale()), "move.follow_failed", map[string]any{"player": sess.Username()}))
			}
		}
	}

	m.RenderRoomView(sess)

	if m.Combat != nil {
		if in, _ := sess.InCombat(); !in {
			if aggro := monster.AggroCheck(m.Store, destRoom.X, destRoom.Y); aggro != nil {
				if pid := sess.PlayerID(); pid != "" {
					if player, err := database.GetPlayer(pid); err == nil {
						m.Combat.Start(sess, player, aggro)
					}
				}
			}
		}
	}

	return nil
}

// RenderRoomView builds and sends the localized room view, refreshing
// the session's numeric-handle table. Used for both the mover and
// propagated followers, and by the look/inspect commands.
func (m *Mover) RenderRoomView(sess *session.Session) {
	x, y := sess.Coords()
	room := m.Store.GetRoomAt(x, y)
	if room == nil {
		return
	}
	loc := locale.Tag(sess.Locale())

	var b strings.Builder
	title, desc := room.TitleEn, room.DescriptionEn
	if loc == locale.Korean {
		title, desc = room.TitleKo, room.DescriptionKo
	}
	b.WriteString(title + "\r\n")
	b.WriteString(desc + "\r\n")
	if m.Scheduler != nil {
		phaseKey := "room.phase_day"
		if m.Scheduler.IsNight() {
			phaseKey = "room.phase_night"
		}
		b.WriteString(locale.Render(loc, phaseKey, nil) + "\r\n")
	}
	b.WriteString("\r\n")

	exits, _ := m.Store.ComputeExits(room.ID)
	if len(exits) == 0 {
		b.WriteString(locale.Render(loc, "room.no_exits", nil) + "\r\n")
	} else {
		names := make([]string, 0, len(exits))
		for dir := range exits {
			names = append(names, string(dir))
		}
		sort.Strings(names)
		b.WriteString("Exits: " + strings.Join(names, ", ") + "\r\n")
	}

	handles := make(map[int]session.RoomHandle)
	n := 1

	players := m.Sessions.AuthenticatedInRoom(x, y)
	var others []string
	for _, p := range players {
		if p.ID == sess.ID {
			continue
		}
		others = append(others, fmt.Sprintf("%d) %s", n, p.Username()))
		handles[n] = session.RoomHandle{Kind: "player", ID: p.PlayerID()}
		n++
	}
	if len(others) > 0 {
		b.WriteString("Players here: " + strings.Join(others, ", ") + "\r\n")
	}

	objects := m.Store.GetObjectsIn(database.LocationRoom, room.ID)
	var objNames []string
	for _, o := range objects {
		name := o.NameEn
		if loc == locale.Korean {
			name = o.NameKo
		}
		objNames = append(objNames, fmt.Sprintf("%d) %s", n, name))
		handles[n] = session.RoomHandle{Kind: "object", ID: o.ID}
		n++
	}
	if len(objNames) > 0 {
		b.WriteString("Items here: " + strings.Join(objNames, ", ") + "\r\n")
	}

	selfFaction := "adventurer"
	if pid := sess.PlayerID(); pid != "" {
		if player, err := database.GetPlayer(pid); err == nil && player.FactionID != "" {
			selfFaction = player.FactionID
		}
	}

	npcs, _ := m.Store.GetNPCsInRoom(room.ID)
	monsters := m.Store.GetMonstersAt(x, y)
	var friendly, neutral, hostile []string
	for _, npc := range npcs {
		name := npc.NameEn
		if loc == locale.Korean {
			name = npc.NameKo
		}
		entry := fmt.Sprintf("%d) %s", n, name)
		handles[n] = session.RoomHandle{Kind: "npc", ID: npc.ID}
		n++
		switch factionRelation(selfFaction, npc.FactionID) {
		case "friendly":
			friendly = append(friendly, telnet.Colorize(telnet.ColorPlayer, entry))
		case "neutral":
			neutral = append(neutral, telnet.Colorize(telnet.ColorNeutral, entry))
		default:
			hostile = append(hostile, telnet.Colorize(telnet.ColorHostile, entry))
		}
	}
	for _, mon := range monsters {
		name := mon.NameEn
		if loc == locale.Korean {
			name = mon.NameKo
		}
		entry := fmt.Sprintf("%d) %s", n, name)
		handles[n] = session.RoomHandle{Kind: "monster", ID: mon.ID}
		n++
		switch factionRelation(selfFaction, mon.FactionID) {
		case "friendly":
			friendly = append(friendly, telnet.Colorize(telnet.ColorPlayer, entry))
		case "neutral":
			neutral = append(neutral, telnet.Colorize(telnet.ColorNeutral, entry))
		default:
			hostile = append(hostile, telnet.Colorize(telnet.ColorHostile, entry))
		}
	}
	if len(friendly) > 0 {
		b.WriteString("Also here: " + strings.Join(friendly, ", ") + "\r\n")
	}
	if len(neutral) > 0 {
		b.WriteString("Nearby: " + strings.Join(neutral, ", ") + "\r\n")
	}
	if len(hostile) > 0 {
		b.WriteString("Hostile: " + strings.Join(hostile, ", ") + "\r\n")
	}

	sess.SetHandles(handles)
	sess.IO.WriteLine(b.String())
}
