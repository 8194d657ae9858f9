// File: internal/command/register.go
// MUD Engine - Command Dispatcher (C4): standard command table

package command

import "mudengine/internal/eventbus"

// NewStandardRegistry builds a Registry with every command from the
// spec's command surface wired in. Mirrors the teacher's
// NewCommandRegistry() registration-call-list pattern.
func NewStandardRegistry(bus *eventbus.Bus) *Registry {
	r := NewRegistry(bus)

	// Movement.
	r.Register(&Command{Name: "north", Aliases: []string{"n"}, RequiresAuth: true, Handler: cmdMove("north"), HelpText: "Move north."})
	r.Register(&Command{Name: "south", Aliases: []string{"s"}, RequiresAuth: true, Handler: cmdMove("south"), HelpText: "Move south."})
	r.Register(&Command{Name: "east", Aliases: []string{"e"}, RequiresAuth: true, Handler: cmdMove("east"), HelpText: "Move east."})
	r.Register(&Command{Name: "west", Aliases: []string{"w"}, RequiresAuth: true, Handler: cmdMove("west"), HelpText: "Move west."})
	r.Register(&Command{Name: "enter", RequiresAuth: true, Handler: cmdMove("enter"), HelpText: "Take a portal exit."})

	// Look.
	r.Register(&Command{Name: "look", Aliases: []string{"l"}, RequiresAuth: true, Handler: cmdLook, HelpText: "Look around, or at a numbered thing."})

	// Social.
	r.Register(&Command{Name: "say", Aliases: []string{"'"}, RequiresAuth: true, Handler: cmdSay, HelpText: "Say something aloud."})
	r.Register(&Command{Name: "whisper", Aliases: []string{"wh"}, RequiresAuth: true, Handler: cmdWhisper, HelpText: "Whisper to a player."})
	r.Register(&Command{Name: "emote", Aliases: []string{"em"}, RequiresAuth: true, Handler: cmdEmote, HelpText: "Perform an emote."})
	r.Register(&Command{Name: "who", RequiresAuth: true, Handler: cmdWho, HelpText: "List players online."})

	// Inventory.
	r.Register(&Command{Name: "inventory", Aliases: []string{"i"}, RequiresAuth: true, Handler: cmdInventory, HelpText: "List what you're carrying."})
	r.Register(&Command{Name: "get", Aliases: []string{"take"}, RequiresAuth: true, Handler: cmdGet, HelpText: "Pick something up."})
	r.Register(&Command{Name: "drop", RequiresAuth: true, Handler: cmdDrop, HelpText: "Drop something."})
	r.Register(&Command{Name: "equip", RequiresAuth: true, Handler: cmdEquip, HelpText: "Equip a carried item."})
	r.Register(&Command{Name: "unequip", RequiresAuth: true, Handler: cmdUnequip, HelpText: "Unequip a worn item."})
	r.Register(&Command{Name: "unequipall", RequiresAuth: true, Handler: cmdUnequipAll, HelpText: "Unequip everything."})

	// Interaction.
	r.Register(&Command{Name: "talk", RequiresAuth: true, Handler: cmdTalk, HelpText: "Talk to an NPC."})
	r.Register(&Command{Name: "trade", RequiresAuth: true, Handler: cmdTrade, HelpText: "Trade an item with an NPC."})
	r.Register(&Command{Name: "shop", RequiresAuth: true, Handler: cmdShop, HelpText: "shop [list|buy <index>]"})
	r.Register(&Command{Name: "inspect", Aliases: []string{"examine"}, RequiresAuth: true, Handler: cmdInspect, HelpText: "Examine something closely."})
	r.Register(&Command{Name: "follow", RequiresAuth: true, Handler: cmdFollow, HelpText: "follow <player>|stop"})
	r.Register(&Command{Name: "players", Aliases: []string{"here"}, RequiresAuth: true, Handler: cmdPlayersHere, HelpText: "List who else is here."})

	// Combat.
	r.Register(&Command{Name: "attack", Aliases: []string{"att"}, RequiresAuth: true, Handler: cmdAttack, HelpText: "Attack a monster."})
	r.Register(&Command{Name: "defend", Aliases: []string{"def"}, RequiresAuth: true, CombatGate: true, Handler: cmdDefend, HelpText: "Brace against the next attack."})
	r.Register(&Command{Name: "flee", RequiresAuth: true, CombatGate: true, Handler: cmdFlee, HelpText: "Try to escape combat."})

	// Meta.
	r.Register(&Command{Name: "help", RequiresAuth: true, Handler: cmdHelp(r), HelpText: "help [<cmd>]"})
	r.Register(&Command{Name: "language", RequiresAuth: true, Handler: cmdLanguage, HelpText: "language [en|ko]"})
	r.Register(&Command{Name: "changename", RequiresAuth: true, Handler: cmdChangeName, HelpText: "changename <name>"})
	r.Register(&Command{Name: "stats", RequiresAuth: true, Handler: cmdStats, HelpText: "Show your character sheet."})
	r.Register(&Command{Name: "quit", Aliases: []string{"exit"}, RequiresAuth: true, Handler: cmdQuit, HelpText: "Disconnect."})

	// Admin.
	r.Register(&Command{Name: "goto", IsAdmin: true, RequiresAuth: true, Handler: cmdGoto, HelpText: "goto <room-id>"})
	r.Register(&Command{Name: "kick", IsAdmin: true, RequiresAuth: true, Handler: cmdKick, HelpText: "kick <player> [reason]"})
	r.Register(&Command{Name: "createroom", IsAdmin: true, RequiresAuth: true, Handler: cmdCreateRoom, HelpText: "createroom <x> <y> <title>"})
	r.Register(&Command{Name: "editroom", IsAdmin: true, RequiresAuth: true, Handler: cmdEditRoom, HelpText: "editroom <room-id> <title|desc> <text>"})
	r.Register(&Command{Name: "createexit", IsAdmin: true, RequiresAuth: true, Handler: cmdCreateExit, HelpText: "createexit <fromX> <fromY> <toX> <toY> <keyword>"})
	r.Register(&Command{Name: "createobject", IsAdmin: true, RequiresAuth: true, Handler: cmdCreateObject, HelpText: "createobject <name>"})
	r.Register(&Command{Name: "spawnmonster", IsAdmin: true, RequiresAuth: true, Handler: cmdSpawnMonster, HelpText: "spawnmonster <template-id>"})
	r.Register(&Command{Name: "scheduler", IsAdmin: true, RequiresAuth: true, Handler: cmdScheduler, HelpText: "scheduler <list|info|enable|disable> [name]"})
	r.Register(&Command{Name: "world", IsAdmin: true, RequiresAuth: true, Handler: cmdWorld, HelpText: "world <validate|repair>"})

	return r
}
