// File: internal/locale/locale.go
// MUD Engine - Localization

// Package locale treats a player's language preference as an opaque
// tag and exposes a lookup/render function. Content authoring (full
// room/item text) stays data-driven and out of this package's scope;
// this only covers the system/UI string table the core itself emits.
// Templates use {{name}} placeholders rather than positional verbs so
// languages with different word order (Korean) can reorder freely.
package locale

import (
	"fmt"
	"strings"
)

// Tag is an opaque locale identifier. The core never branches on its
// value beyond passing it to Get/Render.
type Tag string

const (
	English Tag = "en"
	Korean  Tag = "ko"

	Default = English
)

// Normalize maps an unrecognized or empty tag to Default.
func Normalize(t Tag) Tag {
	switch Tag(strings.ToLower(string(t))) {
	case English:
		return English
	case Korean:
		return Korean
	default:
		return Default
	}
}

var tables = map[Tag]map[string]string{
	English: {
		"welcome":              "Welcome, {{name}}!",
		"error.prefix":         "{{msg}}",
		"error.room_not_found":      "No such room: {{id}}.",
		"error.exit_endpoints_missing": "Both endpoints must be existing rooms.",
		"info.prefix":          "{{msg}}",
		"success.prefix":       "{{msg}}",
		"auth.menu":            "1) Login  2) Register  3) Quit",
		"auth.bad_credentials": "Invalid username or password.",
		"auth.duplicate_login": "You have logged in from another location.",
		"auth.locked_out":      "Too many failed attempts. Disconnecting.",
		"auth.username_taken":  "That username is already taken.",
		"auth.mismatch":        "Passwords do not match.",

		"move.no_exit":       "You can't go that way.",
		"move.in_combat":     "You can't leave while fighting!",
		"move.follow":        "You follow {{player}}.",
		"move.follow_failed": "You lose track of {{player}} and stop following.",
		"room.enter":         "{{player}} arrives.",
		"room.leave":         "{{player}} leaves.",
		"room.no_exits":      "There are no obvious exits.",

		"combat.only":             "That only works in combat.",
		"combat.initiated":        "{{player}} attacks {{monster}}!",
		"combat.player_hits":      "{{player}} hits {{monster}} for {{dmg}} damage.",
		"combat.monster_hits":     "{{monster}} hits {{player}} for {{dmg}} damage.",
		"combat.player_misses":    "{{player}} misses {{monster}}.",
		"combat.monster_misses":   "{{monster}} misses {{player}}.",
		"combat.defend":           "{{player}} braces for the next attack.",
		"combat.monster_defeated": "{{monster}} has been defeated!",
		"combat.player_defeated":  "{{player}} has fallen!",
		"combat.player_fled":      "{{player}} flees from combat!",
		"combat.you_died":         "You have died and awaken elsewhere, weakened.",
		"combat.not_found":        "There's nothing like that to attack here.",
		"combat.already_in":       "You're already in combat.",

		"time.dawn": "The sun rises over the horizon.",
		"time.dusk": "Darkness falls across the land.",
		"room.phase_day":   "It is daytime.",
		"room.phase_night": "It is nighttime.",

		"rename.cooldown": "You must wait {{remaining}} before changing your name again.",
		"rename.invalid":  "Names must be 3-20 characters (letters, digits, spaces, Hangul).",
		"rename.success":  "Your name is now {{name}}.",

		"repeat.none":     "Nothing to repeat.",
		"admin.denied":    "You are not authorized to do that.",
		"shutdown.notice": "The server is shutting down. Goodbye!",

		"say.you_say":      "You say, \"{{msg}}\"",
		"say.player_says":  "{{player}} says, \"{{msg}}\"",
		"whisper.you":      "You whisper to {{player}}, \"{{msg}}\"",
		"whisper.received": "{{player}} whispers, \"{{msg}}\"",
		"whisper.not_found": "There's no one online by that name.",
		"emote.generic":    "{{player}} {{text}}",

		"inventory.empty": "You aren't carrying anything.",
		"get.not_found":   "You don't see that here.",
		"get.picked_up":   "You pick up {{item}}.",
		"drop.not_found":  "You aren't carrying that.",
		"drop.dropped":    "You drop {{item}}.",
		"equip.not_found": "You don't have that.",
		"equip.equipped":  "You equip {{item}}.",
		"unequip.done":    "You remove {{item}}.",

		"follow.started": "You are now following {{player}}.",
		"follow.stopped": "You stop following.",
		"follow.not_found": "There's no one online by that name.",

		"unknown.command": "Unknown command: {{cmd}}",
		"help.header":     "Available commands:",
	},
	Korean: {
		"welcome":              "환영합니다, {{name}}님!",
		"error.prefix":         "{{msg}}",
		"error.room_not_found":      "그런 방은 없습니다: {{id}}.",
		"error.exit_endpoints_missing": "양쪽 끝에 방이 모두 존재해야 합니다.",
		"info.prefix":          "{{msg}}",
		"success.prefix":       "{{msg}}",
		"auth.menu":            "1) 로그인  2) 가입  3) 종료",
		"auth.bad_credentials": "아이디 또는 비밀번호가 잘못되었습니다.",
		"auth.duplicate_login": "다른 접속에서 로그인되었습니다.",
		"auth.locked_out":      "시도 횟수를 초과하여 연결을 종료합니다.",
		"auth.username_taken":  "이미 사용 중인 아이디입니다.",
		"auth.mismatch":        "비밀번호가 일치하지 않습니다.",

		"move.no_exit":       "그 방향으로는 갈 수 없습니다.",
		"move.in_combat":     "전투 중에는 이동할 수 없습니다!",
		"move.follow":        "{{player}}님을 따라갑니다.",
		"move.follow_failed": "{{player}}님을 놓쳐 따라가기를 멈춥니다.",
		"room.enter":         "{{player}}님이 도착했습니다.",
		"room.leave":         "{{player}}님이 떠났습니다.",
		"room.no_exits":      "주변에 출구가 없습니다.",

		"combat.only":             "전투 중에만 사용할 수 있습니다.",
		"combat.initiated":        "{{player}}가 {{monster}}를 공격합니다!",
		"combat.player_hits":      "{{player}}가 {{monster}}에게 {{dmg}}의 피해를 입혔습니다.",
		"combat.monster_hits":     "{{monster}}가 {{player}}에게 {{dmg}}의 피해를 입혔습니다.",
		"combat.player_misses":    "{{player}}가 {{monster}}를 빗나갔습니다.",
		"combat.monster_misses":   "{{monster}}가 {{player}}를 빗나갔습니다.",
		"combat.defend":           "{{player}}가 방어 자세를 취합니다.",
		"combat.monster_defeated": "{{monster}}가 쓰러졌습니다!",
		"combat.player_defeated":  "{{player}}가 쓰러졌습니다!",
		"combat.player_fled":      "{{player}}가 전투에서 도망쳤습니다!",
		"combat.you_died":         "당신은 죽었고 다른 곳에서 깨어납니다.",
		"combat.not_found":        "공격할 대상이 여기 없습니다.",
		"combat.already_in":       "이미 전투 중입니다.",

		"time.dawn": "해가 지평선 위로 떠오릅니다.",
		"time.dusk": "어둠이 대지를 덮습니다.",
		"room.phase_day":   "낮입니다.",
		"room.phase_night": "밤입니다.",

		"rename.cooldown": "이름을 다시 바꾸려면 {{remaining}} 기다려야 합니다.",
		"rename.invalid":  "이름은 3-20자(영문, 숫자, 공백, 한글)여야 합니다.",
		"rename.success":  "이제 이름은 {{name}}입니다.",

		"repeat.none":     "반복할 명령이 없습니다.",
		"admin.denied":    "그 명령을 수행할 권한이 없습니다.",
		"shutdown.notice": "서버가 종료됩니다. 안녕히 가세요!",

		"say.you_say":       "당신이 말합니다, \"{{msg}}\"",
		"say.player_says":   "{{player}}가 말합니다, \"{{msg}}\"",
		"whisper.you":       "{{player}}에게 속삭입니다, \"{{msg}}\"",
		"whisper.received":  "{{player}}가 속삭입니다, \"{{msg}}\"",
		"whisper.not_found": "그런 이름으로 접속 중인 사람이 없습니다.",
		"emote.generic":     "{{player}} {{text}}",

		"inventory.empty": "아무것도 가지고 있지 않습니다.",
		"get.not_found":   "여기서 그것을 찾을 수 없습니다.",
		"get.picked_up":   "{{item}}을(를) 주웠습니다.",
		"drop.not_found":  "그것을 가지고 있지 않습니다.",
		"drop.dropped":    "{{item}}을(를) 내려놓았습니다.",
		"equip.not_found": "그것을 가지고 있지 않습니다.",
		"equip.equipped":  "{{item}}을(를) 착용했습니다.",
		"unequip.done":    "{{item}}을(를) 벗었습니다.",

		"follow.started":   "이제 {{player}}님을 따라갑니다.",
		"follow.stopped":   "따라가기를 멈춥니다.",
		"follow.not_found": "그런 이름으로 접속 중인 사람이 없습니다.",

		"unknown.command": "알 수 없는 명령입니다: {{cmd}}",
		"help.header":     "사용 가능한 명령어:",
	},
}

// Get returns the raw message template for key in the given locale,
// falling back to English and finally to the key itself.
func Get(t Tag, key string) string {
	t = Normalize(t)
	if msg, ok := tables[t][key]; ok {
		return msg
	}
	if msg, ok := tables[Default][key]; ok {
		return msg
	}
	return key
}

// Render looks up key and substitutes every {{name}} placeholder from
// args. Missing args leave the placeholder untouched.
func Render(t Tag, key string, args map[string]any) string {
	msg := Get(t, key)
	for k, v := range args {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", fmt.Sprint(v))
	}
	return msg
}
