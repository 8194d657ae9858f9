package locale

import "testing"

func TestRenderSubstitutesPlaceholders(t *testing.T) {
	got := Render(English, "combat.player_hits", map[string]any{"player": "Arin", "monster": "Goblin", "dmg": 4})
	want := "Arin hits Goblin for 4 damage."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestGetFallsBackToEnglish(t *testing.T) {
	got := Get(Tag("fr"), "repeat.none")
	if got != Get(English, "repeat.none") {
		t.Errorf("expected fallback to English for unknown tag, got %q", got)
	}
}

func TestGetUnknownKeyReturnsKey(t *testing.T) {
	if got := Get(English, "no.such.key"); got != "no.such.key" {
		t.Errorf("expected key echoed back, got %q", got)
	}
}

func TestNormalize(t *testing.T) {
	if Normalize("KO") != Korean {
		t.Error("expected case-insensitive match to Korean")
	}
	if Normalize("xx") != Default {
		t.Error("expected unknown tag to fall back to Default")
	}
}
