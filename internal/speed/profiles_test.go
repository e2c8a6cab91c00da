package speed

import "testing"

func TestLookup_AllSpeeds(t *testing.T) {
	for s := Min; s <= Max; s++ {
		p, err := Lookup(s)
		if err != nil {
			t.Fatalf("Lookup(%d): %v", s, err)
		}
		if p.Speed != s {
			t.Errorf("Lookup(%d).Speed = %d", s, p.Speed)
		}
		if p.Primary == p.Secondary || p.Secondary == p.Tertiary || p.Primary == p.Tertiary {
			t.Errorf("speed %d has duplicate modes: %v", s, p.Modes())
		}
	}
}

func TestLookup_OutOfRange(t *testing.T) {
	for _, s := range []Speed{0, 6, -1} {
		if _, err := Lookup(s); err == nil {
			t.Errorf("Lookup(%d) expected error", s)
		}
	}
}

func TestBaseDifficulty(t *testing.T) {
	tests := []struct {
		speed Speed
		want  float64
	}{
		{1, 0.2}, {2, 0.4}, {3, 0.6}, {4, 0.8}, {5, 1.0},
		{0, 0.2}, {9, 1.0},
	}
	for _, tt := range tests {
		if got := BaseDifficulty(tt.speed); got != tt.want {
			t.Errorf("BaseDifficulty(%d) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestHasMode_ScaffoldingModes(t *testing.T) {
	if !MustLookup(1).HasMode(ModeVisual) || !MustLookup(1).HasMode(ModeKinesthetic) {
		t.Error("speed 1 should carry visual and kinesthetic modes")
	}
	if MustLookup(3).HasMode(ModeKinesthetic) {
		t.Error("speed 3 should not carry the kinesthetic mode")
	}
	if MustLookup(5).HasMode(ModeVisual) {
		t.Error("speed 5 should not carry the visual mode")
	}
}

func TestUIConfig_Knobs(t *testing.T) {
	fonts := map[string]bool{"large": true, "standard": true, "compact": true}
	anims := map[string]bool{"slow": true, "standard": true, "quick": true}
	colors := map[string]bool{"calming": true, "vibrant": true, "professional": true}
	for _, p := range All() {
		if !fonts[p.UI.FontSize] || !anims[p.UI.Animations] || !colors[p.UI.Colors] {
			t.Errorf("speed %d has unexpected UI knobs: %+v", p.Speed, p.UI)
		}
	}
}
