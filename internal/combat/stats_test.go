package combat

import "testing"

func TestModifierFollowsDnDFormula(t *testing.T) {
	cases := map[int]int{8: -1, 10: 0, 11: 0, 12: 1, 18: 4, 3: -4}
	for score, want := range cases {
		if got := Modifier(score); got != want {
			t.Errorf("Modifier(%d) = %d, want %d", score, got, want)
		}
	}
}

func TestParseStatsFallsBackOnEmptyOrMalformed(t *testing.T) {
	def := DefaultMonsterStats()
	if got := ParseStats("", def); got != def {
		t.Errorf("empty blob: got %+v, want default %+v", got, def)
	}
	if got := ParseStats("{not json", def); got != def {
		t.Errorf("malformed blob: got %+v, want default %+v", got, def)
	}
}

func TestParseStatsDecodesValidBlob(t *testing.T) {
	blob := `{"hp":15,"max_hp":30,"strength":14,"gold":3}`
	s := ParseStats(blob, DefaultPlayerStats())
	if s.HP != 15 || s.MaxHP != 30 || s.Strength != 14 || s.Gold != 3 {
		t.Fatalf("got %+v, want hp=15 max_hp=30 strength=14 gold=3", s)
	}
}

func TestEncodeRoundTripsThroughParseStats(t *testing.T) {
	s := Stats{HP: 7, MaxHP: 20, Strength: 16, Dexterity: 13, Gold: 42}
	blob := s.Encode()
	got := ParseStats(blob, Stats{})
	if got != s {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
}

func TestDexAndStrModifiers(t *testing.T) {
	s := Stats{Dexterity: 16, Strength: 8}
	if got := s.DexModifier(); got != 3 {
		t.Errorf("DexModifier() = %d, want 3", got)
	}
	if got := s.StrModifier(); got != -1 {
		t.Errorf("StrModifier() = %d, want -1", got)
	}
}
