package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/abhisek/speedlearn/internal/speed"
)

func speedOf(s int) speed.Speed { return speed.Speed(s) }

func TestSimplify_StripsQualifiers(t *testing.T) {
	out := Simplify("The sun is very hot. It is actually a star.", 1, 1.0)
	if strings.Contains(out, "very") || strings.Contains(out, "actually") {
		t.Errorf("qualifiers not stripped: %q", out)
	}
	if got := len(Paragraphs(out)); got != 2 {
		t.Errorf("paragraphs = %d, want 2", got)
	}
}

func TestSimplify_QualifierCarriesTerminator(t *testing.T) {
	out := Simplify("Magnets pull iron really.", 1, 1.0)
	if out != "Magnets pull iron." {
		t.Errorf("got %q, want %q", out, "Magnets pull iron.")
	}
}

func TestSimplify_ShortensLongWords(t *testing.T) {
	out := Simplify("Photosynthesizing organisms exist.", 1, 1.0)
	for _, w := range strings.Fields(out) {
		if n := utf8.RuneCountInString(strings.TrimRight(w, ".")); n > maxWordRunes {
			t.Errorf("word %q has %d runes, max %d", w, n, maxWordRunes)
		}
	}
}

func TestSimplify_TruncatesLongText(t *testing.T) {
	text := strings.Repeat("Rocks form in layers over time. ", 40)
	out := Simplify(text, 2, 0.6)
	if utf8.RuneCountInString(out) >= utf8.RuneCountInString(text) {
		t.Error("expected simplified text to be shorter")
	}
	if !strings.HasSuffix(out, "...") {
		t.Errorf("expected truncation marker, got suffix %q", out[len(out)-5:])
	}
}

func TestSimplify_ShortTextKept(t *testing.T) {
	out := Simplify("Ice melts.", 1, 0.6)
	if out != "Ice melts." {
		t.Errorf("got %q", out)
	}
}

func TestAdaptText_BySpeed(t *testing.T) {
	text := "Water boils at one hundred degrees."
	if got := AdaptText(text, 3, nil); got != text {
		t.Errorf("speed 3 should be unchanged, got %q", got)
	}
	if got := AdaptText(text, 4, []string{"boiling"}); !strings.Contains(got, "boiling") || strings.Contains(got, challengeMarker) {
		t.Errorf("speed 4 elaboration wrong: %q", got)
	}
	if got := AdaptText(text, 5, nil); !strings.Contains(got, challengeMarker) {
		t.Errorf("speed 5 should include a challenge: %q", got)
	}
}

func TestElaborate_Idempotent(t *testing.T) {
	once := Elaborate("Sound travels as waves.", nil, true)
	twice := Elaborate(once, nil, true)
	if once != twice {
		t.Error("elaborating twice should not append markers again")
	}
}

func TestKeyTerms(t *testing.T) {
	terms := KeyTerms(photosynthesis, 3)
	if len(terms) != 3 {
		t.Fatalf("terms = %v, want 3", terms)
	}
	if terms[0] != "plants" {
		t.Errorf("first term = %q, want plants", terms[0])
	}
}
