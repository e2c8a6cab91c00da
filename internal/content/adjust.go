package content

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/abhisek/speedlearn/internal/speed"
)

const (
	// MaxDelta bounds a single difficulty adjustment in either direction.
	MaxDelta = 2.0

	deltaStep     = 0.1
	minConfidence = 0.3
	extraHint     = "Break the question into smaller pieces and work on one piece at a time."
	checkStep     = "Check your answer with the key before moving on."
)

// ValidDelta reports whether delta is a usable adjustment, i.e. finite.
// Out-of-range finite deltas are clamped rather than rejected.
func ValidDelta(delta float64) bool {
	return !math.IsNaN(delta) && !math.IsInf(delta, 0)
}

// AdjustDifficulty shifts a payload's difficulty by delta steps of 0.1.
// Delta is clamped to [-2, 2]; the resulting difficulty stays in [0.1, 1.0].
// Negative deltas simplify text, add guided steps and an extra hint;
// positive deltas elaborate, remove scaffolding and drop a hint (one is
// always kept). Confidence drops by |delta|*0.1, floored at 0.3. A
// non-finite delta is treated as zero.
func AdjustDifficulty(p Payload, contentID string, delta float64, reason string, now time.Time) (Payload, Adaptation) {
	if !ValidDelta(delta) {
		delta = 0
	}
	delta = lo.Clamp(delta, -MaxDelta, MaxDelta)
	out := p.Clone()

	out.Difficulty = round2(lo.Clamp(p.Difficulty+delta*deltaStep, MinDifficulty, MaxDifficulty))
	out.Confidence = round2(math.Max(p.Confidence-math.Abs(delta)*deltaStep, minConfidence))

	switch {
	case delta < 0:
		p2 := simplifyBySpeed[speed.Speed(2)]
		out.Text = Simplify(out.Text, p2.sentencesPerParagraph, p2.keep)
		out.Hints = append(out.Hints, extraHint)
		out.HintHooks = append(out.HintHooks, HintHook{Paragraph: 0, Hint: len(out.Hints) - 1, Trigger: TriggerStruggle})
	case delta > 0:
		out.Text = Elaborate(out.Text, KeyTerms(out.Text, 1), delta >= 1)
		if len(out.Hints) > 1 {
			out.Hints = out.Hints[:len(out.Hints)-1]
		}
	}
	out.Paragraphs = Paragraphs(out.Text)
	out.HintHooks = lo.Filter(out.HintHooks, func(h HintHook, _ int) bool { return h.Hint < len(out.Hints) })
	for i := range out.HintHooks {
		out.HintHooks[i].Paragraph = min(out.HintHooks[i].Paragraph, max(len(out.Paragraphs)-1, 0))
	}

	for i, s := range out.Sections {
		is, ok := s.(InteractiveSection)
		if !ok {
			continue
		}
		switch {
		case delta < 0:
			is.Guided = true
			if !lo.Contains(is.Steps, checkStep) {
				is.Steps = append(is.Steps, checkStep)
			}
		case delta > 0:
			is.Guided = false
			if len(is.Steps) > 1 {
				is.Steps = is.Steps[:len(is.Steps)-1]
			}
		}
		out.Sections[i] = is
	}

	if reason == "" {
		reason = fmt.Sprintf("difficulty adjusted by %+.1f", delta)
	}
	return out, Adaptation{
		ID:        uuid.NewString(),
		ContentID: contentID,
		Type:      AdaptDifficulty,
		BeforeState: map[string]any{
			"difficulty": p.Difficulty,
			"confidence": p.Confidence,
			"hints":      len(p.Hints),
		},
		AfterState: map[string]any{
			"difficulty": out.Difficulty,
			"confidence": out.Confidence,
			"hints":      len(out.Hints),
		},
		Reasoning:  reason,
		Confidence: out.Confidence,
		Timestamp:  now,
	}
}

// ApplyAccessibility adapts a payload for the given needs. Recognized needs:
// "dyslexia" (one sentence per paragraph), "screen-reader" (alt text on
// visual elements), "attention" (at most two hints). Unknown needs are
// recorded but change nothing.
func ApplyAccessibility(p Payload, contentID string, needs []string, now time.Time) (Payload, Adaptation) {
	out := p.Clone()
	var applied []string

	for _, need := range needs {
		switch strings.ToLower(need) {
		case "dyslexia":
			out.Paragraphs = splitSentences(strings.Join(out.Paragraphs, " "))
			out.Text = strings.Join(out.Paragraphs, "\n\n")
			applied = append(applied, "dyslexia")
		case "screen-reader":
			for i, s := range out.Sections {
				vs, ok := s.(VisualSection)
				if !ok {
					continue
				}
				for j := range vs.Elements {
					vs.Elements[j].AltText = "Described image: " + vs.Elements[j].Description
				}
				out.Sections[i] = vs
			}
			applied = append(applied, "screen-reader")
		case "attention":
			if len(out.Hints) > 2 {
				out.Hints = out.Hints[:2]
				out.HintHooks = lo.Filter(out.HintHooks, func(h HintHook, _ int) bool { return h.Hint < 2 })
			}
			applied = append(applied, "attention")
		}
	}
	for i := range out.HintHooks {
		out.HintHooks[i].Paragraph = min(out.HintHooks[i].Paragraph, max(len(out.Paragraphs)-1, 0))
	}

	return out, Adaptation{
		ID:          uuid.NewString(),
		ContentID:   contentID,
		Type:        AdaptAccessibility,
		BeforeState: map[string]any{"paragraphs": len(p.Paragraphs), "hints": len(p.Hints)},
		AfterState:  map[string]any{"paragraphs": len(out.Paragraphs), "hints": len(out.Hints), "applied": applied},
		Reasoning:   fmt.Sprintf("accessibility needs: %s", strings.Join(needs, ", ")),
		Confidence:  out.Confidence,
		Timestamp:   now,
	}
}
