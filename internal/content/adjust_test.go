package content

import (
	"math"
	"strings"
	"testing"
	"time"
)

func generated(t *testing.T, s int) Payload {
	t.Helper()
	g, err := Generate(testSource(), speedOf(s), nil, time.Now())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return g.Payload
}

func TestAdjustDifficulty_StaysInBounds(t *testing.T) {
	deltas := []float64{-2, -1.5, -1, -0.5, 0, 0.5, 1, 1.5, 2}
	starts := []float64{0.1, 0.2, 0.5, 0.9, 1.0}

	for _, start := range starts {
		for _, delta := range deltas {
			p := generated(t, 3)
			p.Difficulty = start
			out, ad := AdjustDifficulty(p, "L1", delta, "test", time.Now())
			if out.Difficulty < MinDifficulty || out.Difficulty > MaxDifficulty {
				t.Errorf("start=%v delta=%v: difficulty %v out of bounds", start, delta, out.Difficulty)
			}
			if ad.Type != AdaptDifficulty {
				t.Errorf("adaptation type = %q, want difficulty", ad.Type)
			}
		}
	}
}

func TestAdjustDifficulty_ClampsDelta(t *testing.T) {
	p := generated(t, 3)
	p.Difficulty = 0.5
	out, _ := AdjustDifficulty(p, "L1", 9, "", time.Now())
	if out.Difficulty != 0.7 {
		t.Errorf("difficulty = %v, want 0.7 (delta clamped to 2)", out.Difficulty)
	}
}

func TestAdjustDifficulty_NonFiniteDelta(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
	}{
		{"nan", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := generated(t, 3)
			p.Difficulty = 0.5
			out, ad := AdjustDifficulty(p, "L1", tt.delta, "", time.Now())
			if out.Difficulty != 0.5 {
				t.Errorf("difficulty = %v, want unchanged 0.5", out.Difficulty)
			}
			if out.Confidence != p.Confidence {
				t.Errorf("confidence = %v, want unchanged %v", out.Confidence, p.Confidence)
			}
			if math.IsNaN(ad.Confidence) {
				t.Error("adaptation confidence is NaN")
			}
			if ValidDelta(tt.delta) {
				t.Errorf("ValidDelta(%v) = true", tt.delta)
			}
		})
	}
}

func TestAdjustDifficulty_Easier(t *testing.T) {
	p := generated(t, 2)
	before := len(p.Hints)
	out, ad := AdjustDifficulty(p, "L1", -1, "learner struggling", time.Now())

	if out.Difficulty != 0.3 {
		t.Errorf("difficulty = %v, want 0.3", out.Difficulty)
	}
	if len(out.Hints) != before+1 {
		t.Errorf("hints = %d, want %d", len(out.Hints), before+1)
	}
	if out.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", out.Confidence)
	}
	is := out.SectionsOf(KindInteractive)[0].(InteractiveSection)
	if !is.Guided || is.Steps[len(is.Steps)-1] != checkStep {
		t.Errorf("interactive section not scaffolded: %+v", is)
	}
	if ad.Reasoning != "learner struggling" {
		t.Errorf("reasoning = %q", ad.Reasoning)
	}
	if ad.BeforeState["difficulty"] != 0.4 {
		t.Errorf("before difficulty = %v, want 0.4", ad.BeforeState["difficulty"])
	}

	// The input payload is untouched.
	if len(p.Hints) != before || p.Difficulty != 0.4 {
		t.Error("AdjustDifficulty mutated its input")
	}
}

func TestAdjustDifficulty_Harder(t *testing.T) {
	p := generated(t, 1)
	out, _ := AdjustDifficulty(p, "L1", 2, "too easy", time.Now())

	if len(out.Hints) != len(p.Hints)-1 {
		t.Errorf("hints = %d, want %d", len(out.Hints), len(p.Hints)-1)
	}
	if !strings.Contains(out.Text, elaborationMarker) {
		t.Error("expected elaboration appended")
	}
	for _, h := range out.HintHooks {
		if h.Hint >= len(out.Hints) {
			t.Errorf("hook references dropped hint %d", h.Hint)
		}
	}
}

func TestAdjustDifficulty_ConfidenceFloor(t *testing.T) {
	p := generated(t, 3)
	p.Confidence = 0.4
	out, _ := AdjustDifficulty(p, "L1", -2, "", time.Now())
	if out.Confidence != minConfidence {
		t.Errorf("confidence = %v, want %v", out.Confidence, minConfidence)
	}
}

func TestAdjustDifficulty_KeepsOneHint(t *testing.T) {
	p := generated(t, 5)
	if len(p.Hints) != 1 {
		t.Fatalf("speed 5 should produce 1 hint, got %d", len(p.Hints))
	}
	out, _ := AdjustDifficulty(p, "L1", 1, "", time.Now())
	if len(out.Hints) != 1 {
		t.Errorf("hints = %d, want 1", len(out.Hints))
	}
}

func TestApplyAccessibility_Attention(t *testing.T) {
	p := generated(t, 1)
	out, ad := ApplyAccessibility(p, "L1", []string{"attention", "unknown"}, time.Now())
	if len(out.Hints) != 2 {
		t.Errorf("hints = %d, want 2", len(out.Hints))
	}
	applied, _ := ad.AfterState["applied"].([]string)
	if len(applied) != 1 || applied[0] != "attention" {
		t.Errorf("applied = %v, want [attention]", applied)
	}
}
