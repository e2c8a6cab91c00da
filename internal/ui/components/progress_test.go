package components

import (
	"strings"
	"testing"

	"github.com/abhisek/speedlearn/internal/ui/theme"
)

func TestMeter_Plain(t *testing.T) {
	th := theme.ForSpeed(3, true)

	tests := []struct {
		name       string
		value      float64
		wantFilled int
		wantEmpty  int
	}{
		{"empty", 0, 0, 20},
		{"half", 0.5, 10, 10},
		{"full", 1, 20, 0},
		{"over", 1.7, 20, 0},
		{"negative", -0.3, 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMeter("", tt.value, false, 20).View(th)
			if n := strings.Count(got, "#"); n != tt.wantFilled {
				t.Errorf("filled = %d, want %d (%q)", n, tt.wantFilled, got)
			}
			if n := strings.Count(got, "."); n != tt.wantEmpty {
				t.Errorf("empty = %d, want %d (%q)", n, tt.wantEmpty, got)
			}
		})
	}
}

func TestMeter_LabelAndPercent(t *testing.T) {
	th := theme.ForSpeed(3, true)
	got := NewMeter("difficulty", 0.4, true, 40).View(th)
	if !strings.HasPrefix(got, "difficulty  ") {
		t.Errorf("missing label: %q", got)
	}
	if !strings.HasSuffix(got, "  40%") {
		t.Errorf("missing percent: %q", got)
	}
	// 40 - len("difficulty  ") - 6 = 22 cells of bar.
	if n := strings.Count(got, "#") + strings.Count(got, "."); n != 22 {
		t.Errorf("bar width = %d, want 22", n)
	}
}

func TestMeter_MinimumBarWidth(t *testing.T) {
	th := theme.ForSpeed(3, true)
	got := NewMeter("a very long label that fills everything", 1, false, 10).View(th)
	if n := strings.Count(got, "#"); n != 4 {
		t.Errorf("bar width = %d, want 4", n)
	}
}
