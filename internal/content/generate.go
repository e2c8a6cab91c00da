package content

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/abhisek/speedlearn/internal/speed"
)

const (
	baseConfidence     = 0.7
	profileConfidence  = 0.2
	lengthConfidence   = 0.1
	confidenceTextSize = 500
	maxKeyTerms        = 3
)

// Generate adapts a source lesson for a speed and an optional profile.
// It has no side effects beyond reading the clock passed in as now.
func Generate(src Source, s speed.Speed, profile *PersonalizationProfile, now time.Time) (Generated, error) {
	p, err := speed.Lookup(s)
	if err != nil {
		return Generated{}, fmt.Errorf("generate %s: %w", src.LessonID, err)
	}

	terms := src.KeyTerms
	if len(terms) == 0 {
		terms = KeyTerms(src.Text, maxKeyTerms)
	}

	text := AdaptText(src.Text, s, terms)
	paragraphs := Paragraphs(text)

	var sections []Section
	if p.HasMode(speed.ModeVisual) {
		sections = append(sections, buildVisual(p, src.Title, terms))
	}
	if p.HasMode(speed.ModeKinesthetic) {
		sections = append(sections, buildInteractive(p, terms))
	}
	var interests []string
	if profile != nil {
		interests = profile.Interests
	}
	sections = append(sections, buildConversational(p, terms, interests))

	hints, hooks := buildHints(s, terms, len(paragraphs))

	difficulty := Difficulty(src.Text, s, profile)
	payload := Payload{
		Title:      src.Title,
		Text:       text,
		Paragraphs: paragraphs,
		Sections:   sections,
		Hints:      hints,
		HintHooks:  hooks,
		Difficulty: difficulty,
		Confidence: Confidence(text, profile != nil),
	}

	var adaptations []Adaptation
	if profile != nil {
		if len(profile.Interests) > 0 {
			adaptations = append(adaptations, Adaptation{
				ID:          uuid.NewString(),
				ContentID:   src.LessonID,
				Type:        AdaptInterest,
				BeforeState: map[string]any{"interest_prompts": 0},
				AfterState:  map[string]any{"interest_prompts": len(profile.Interests)},
				Reasoning:   "added check-in prompts tied to learner interests",
				Confidence:  payload.Confidence,
				Timestamp:   now,
			})
		}
		if ad, ok := orderByStyle(&payload, profile.LearningStyle); ok {
			ad.ContentID = src.LessonID
			ad.Timestamp = now
			adaptations = append(adaptations, ad)
		}
		if len(profile.AccessibilityNeeds) > 0 {
			var ad Adaptation
			payload, ad = ApplyAccessibility(payload, src.LessonID, profile.AccessibilityNeeds, now)
			adaptations = append(adaptations, ad)
		}
	}

	return Generated{
		Payload:              payload,
		DifficultyLevel:      Level(difficulty),
		PersonalizationLevel: PersonalizationLevel(profile),
		Adaptations:          adaptations,
	}, nil
}

// Confidence is 0.7, plus 0.2 when a profile informed the adaptation, plus
// 0.1 when the adapted text is longer than 500 characters, capped at 1.0.
func Confidence(adaptedText string, hasProfile bool) float64 {
	c := baseConfidence
	if hasProfile {
		c += profileConfidence
	}
	if utf8.RuneCountInString(adaptedText) > confidenceTextSize {
		c += lengthConfidence
	}
	return round2(math.Min(c, 1.0))
}

// styleKind maps a learning style to the section kind it favors.
var styleKind = map[LearningStyle]SectionKind{
	StyleVisual:      KindVisual,
	StyleKinesthetic: KindInteractive,
	StyleAuditory:    KindConversational,
}

// orderByStyle moves the section that matches the learner's style to the
// front. It reports false when nothing moved.
func orderByStyle(p *Payload, style LearningStyle) (Adaptation, bool) {
	kind, ok := styleKind[style]
	if !ok {
		return Adaptation{}, false
	}
	for i, s := range p.Sections {
		if s.Kind() != kind {
			continue
		}
		if i == 0 {
			return Adaptation{}, false
		}
		before := p.Sections[0].Kind()
		reordered := append([]Section{s}, p.Sections[:i]...)
		p.Sections = append(reordered, p.Sections[i+1:]...)
		return Adaptation{
			ID:          uuid.NewString(),
			Type:        AdaptStyle,
			BeforeState: map[string]any{"first_section": string(before)},
			AfterState:  map[string]any{"first_section": string(kind)},
			Reasoning:   fmt.Sprintf("learner prefers %s content", style),
			Confidence:  p.Confidence,
		}, true
	}
	return Adaptation{}, false
}
