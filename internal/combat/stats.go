// File: internal/combat/stats.go
// MUD Engine - Combat Engine (C7): stat blocks

// Stat blocks follow the D&D-style layout of the original engine's
// monster templates (ability scores + derived modifier), persisted as
// the JSON stats_blob column on players and monsters.
package combat

import "encoding/json"

// Stats is the common ability/derived-stat block shared by players and
// monster instances.
type Stats struct {
	HP           int `json:"hp"`
	MaxHP        int `json:"max_hp"`
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	ArmorClass   int `json:"armor_class"`
	AttackBonus  int `json:"attack_bonus"`
	DamageDice   int `json:"damage_dice"`  // number of dice
	DamageSides  int `json:"damage_sides"` // sides per die, e.g. 6 for d6
	DamageBonus  int `json:"damage_bonus"`
	Gold         int `json:"gold"`
}

// Modifier computes the standard D&D ability-modifier formula,
// floor((score-10)/2).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		d--
	}
	return d / 2
}

func (s Stats) DexModifier() int { return Modifier(s.Dexterity) }
func (s Stats) StrModifier() int { return Modifier(s.Strength) }

// DefaultPlayerStats is used when a player row's stats_blob is empty
// (new character).
func DefaultPlayerStats() Stats {
	return Stats{
		HP: 20, MaxHP: 20,
		Strength: 12, Dexterity: 12, Constitution: 12,
		ArmorClass: 10, AttackBonus: 2,
		DamageDice: 1, DamageSides: 6, DamageBonus: 1,
	}
}

// DefaultMonsterStats is used when a monster template's stats_blob is
// empty or malformed.
func DefaultMonsterStats() Stats {
	return Stats{
		HP: 10, MaxHP: 10,
		Strength: 10, Dexterity: 10, Constitution: 10,
		ArmorClass: 10, AttackBonus: 1,
		DamageDice: 1, DamageSides: 4, DamageBonus: 0,
	}
}

// ParseStats decodes a stats_blob, falling back to defaultStats on
// empty or malformed input.
func ParseStats(blob string, defaultStats Stats) Stats {
	if blob == "" {
		return defaultStats
	}
	var s Stats
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return defaultStats
	}
	return s
}

// Encode serializes a Stats block back to its blob representation.
func (s Stats) Encode() string {
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}
