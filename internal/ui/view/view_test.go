package view

import (
	"strings"
	"testing"
	"time"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/tutor"
	"github.com/abhisek/speedlearn/internal/ui/theme"
)

func testEntry(t *testing.T) *cache.Entry {
	t.Helper()
	g, err := content.Generate(content.Source{
		LessonID: "sound",
		Title:    "Sound",
		Text: "Sound is a vibration that travels through air.\n\n" +
			"Fast vibrations make high sounds and slow vibrations make low sounds.",
	}, 2, nil, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return &cache.Entry{
		Key:             "sound:u1:2",
		LessonID:        "sound",
		UserID:          "u1",
		Speed:           2,
		Content:         g.Payload,
		DifficultyLevel: g.DifficultyLevel,
	}
}

func TestLesson(t *testing.T) {
	e := testEntry(t)
	out := Lesson(theme.ForSpeed(2, true), e, true)

	for _, want := range []string{"Sound", "Builder (speed 2)", "level 4", "cached", "difficulty"} {
		if !strings.Contains(out, want) {
			t.Errorf("lesson view missing %q:\n%s", want, out)
		}
	}
	if Lesson(theme.ForSpeed(2, true), nil, false) != "" {
		t.Error("nil entry should render nothing")
	}
}

func TestLesson_ParagraphGapFollowsLayout(t *testing.T) {
	e := testEntry(t)
	if len(e.Content.Paragraphs) < 2 {
		t.Skip("lesson adapted into a single paragraph")
	}
	spacious := Lesson(theme.ForSpeed(1, true), e, false)
	dense := Lesson(theme.ForSpeed(4, true), e, false)
	if strings.Count(spacious, "\n") <= strings.Count(dense, "\n") {
		t.Errorf("spacious layout should use more lines than dense")
	}
}

func TestSection(t *testing.T) {
	th := theme.ForSpeed(3, true)
	tests := []struct {
		name    string
		section content.Section
		want    []string
	}{
		{"visual", content.VisualSection{Title: "Waves", Elements: []content.VisualElement{{Type: "diagram", Description: "a wave"}}},
			[]string{"Visual: Waves", "[diagram] a wave"}},
		{"interactive", content.InteractiveSection{Title: "Pluck", Steps: []string{"stretch a band", "pluck it"}, Guided: true},
			[]string{"Activity: Pluck (guided)", "1) stretch a band", "2) pluck it"}},
		{"conversational", content.ConversationalSection{Prompts: []string{"What do you hear?"}},
			[]string{"Let's talk", "> What do you hear?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Section(th, tt.section)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q in:\n%s", w, out)
				}
			}
		})
	}
}

func TestTutorArtifacts(t *testing.T) {
	th := theme.ForSpeed(3, true)

	if out := Hint(th, &tutor.Hint{Type: tutor.HintProcedural, Text: "Try one step.", Confidence: 0.8}); !strings.Contains(out, "procedural hint") || !strings.Contains(out, "0.80") {
		t.Errorf("hint view: %s", out)
	}
	if out := Hint(th, nil); !strings.Contains(out, "No hint") {
		t.Errorf("nil hint view: %s", out)
	}

	q := &tutor.Question{Type: tutor.QuestionMultipleChoice, Text: "Which is loudest?", Options: []string{"drum", "whisper"}, Difficulty: 0.6}
	out := Question(th, q)
	for _, w := range []string{"multiple-choice", "a) drum", "b) whisper"} {
		if !strings.Contains(out, w) {
			t.Errorf("question view missing %q:\n%s", w, out)
		}
	}

	fb := &tutor.Feedback{Text: "Great work!", IsCorrect: true, Suggestions: []string{"Keep going"}}
	if out := Feedback(th, fb); !strings.Contains(out, "- Keep going") {
		t.Errorf("feedback view: %s", out)
	}

	ea := &tutor.ErrorAnalysis{ErrorType: tutor.ErrorCareless, Description: "slip", Remediation: []string{"slow down", "reread"}, Confidence: 0.8}
	if out := ErrorAnalysis(th, ea); !strings.Contains(out, "careless") || !strings.Contains(out, "- slow down") || !strings.Contains(out, "- reread") {
		t.Errorf("error view: %s", out)
	}
}

func TestRecommendation(t *testing.T) {
	th := theme.ForSpeed(3, true)
	r := &recommend.Recommendation{CurrentSpeed: 2, SuggestedSpeed: 3, Confidence: 0.9, Reason: "steady"}

	if out := Recommendation(th, r, true); !strings.Contains(out, "speed 2 → 3  suggested") {
		t.Errorf("surfaced view: %s", out)
	}
	if out := Recommendation(th, r, false); strings.Contains(out, "suggested") {
		t.Errorf("unsurfaced view marked as suggested: %s", out)
	}
	if out := Recommendation(th, nil, false); !strings.Contains(out, "throttled") {
		t.Errorf("nil view: %s", out)
	}
}

func TestMetrics(t *testing.T) {
	out := Metrics(theme.ForSpeed(3, true), session.Metrics{
		TotalSessions:      4,
		CompletedSessions:  3,
		TotalInteractions:  40,
		AvgSessionDuration: 6 * time.Minute,
		AvgInteractions:    10,
		AvgEngagement:      0.5,
	})
	for _, w := range []string{"total 4", "completed 3", "avg duration 6m0s", "engagement", "75%"} {
		if !strings.Contains(out, w) {
			t.Errorf("metrics view missing %q:\n%s", w, out)
		}
	}
}
