package content

import (
	"encoding/json"
	"time"
)

// LearningStyle is the learner's preferred modality.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// PersonalizationProfile captures what is known about a learner beyond speed.
type PersonalizationProfile struct {
	UserID        string
	LearningStyle LearningStyle
	Interests     []string
	Strengths     []string
	Challenges    []string

	// PreferredComplexity is 0-100. Nil means no preference recorded.
	PreferredComplexity *int

	CulturalContext    string
	AccessibilityNeeds []string
	LastUpdated        time.Time
}

// Source is the raw lesson material the engine adapts.
type Source struct {
	LessonID string
	Title    string
	Text     string

	// KeyTerms are the lesson's central vocabulary. When empty they are
	// extracted from Text.
	KeyTerms []string
}

// SectionKind discriminates the Section union.
type SectionKind string

const (
	KindVisual         SectionKind = "visual"
	KindInteractive    SectionKind = "interactive"
	KindConversational SectionKind = "conversational"
)

// Section is one renderer-facing block of adapted content. Exactly one of
// VisualSection, InteractiveSection or ConversationalSection.
type Section interface {
	Kind() SectionKind
	clone() Section
}

// VisualElement is a single visual aid inside a VisualSection.
type VisualElement struct {
	Type        string `json:"type"` // diagram, illustration, highlight
	Description string `json:"description"`
	AltText     string `json:"alt_text,omitempty"`
}

// VisualSection carries visual scaffolding.
type VisualSection struct {
	Title    string          `json:"title"`
	Elements []VisualElement `json:"elements"`
}

func (VisualSection) Kind() SectionKind { return KindVisual }

func (s VisualSection) clone() Section {
	s.Elements = append([]VisualElement(nil), s.Elements...)
	return s
}

// InteractiveSection carries a hands-on activity.
type InteractiveSection struct {
	Title    string   `json:"title"`
	Activity string   `json:"activity"` // sort, label, simulate, build
	Steps    []string `json:"steps"`
	Guided   bool     `json:"guided"`
}

func (InteractiveSection) Kind() SectionKind { return KindInteractive }

func (s InteractiveSection) clone() Section {
	s.Steps = append([]string(nil), s.Steps...)
	return s
}

// ConversationalSection carries check-in prompts for a conversational renderer.
type ConversationalSection struct {
	Prompts []string `json:"prompts"`
	Tone    string   `json:"tone"`
}

func (ConversationalSection) Kind() SectionKind { return KindConversational }

func (s ConversationalSection) clone() Section {
	s.Prompts = append([]string(nil), s.Prompts...)
	return s
}

// HintTrigger is the learner signal that releases a hint.
type HintTrigger string

const (
	TriggerStruggle HintTrigger = "struggle"
	TriggerIdle     HintTrigger = "idle"
	TriggerSkip     HintTrigger = "skip"
)

// HintHook anchors a hint to a paragraph of the adapted text.
type HintHook struct {
	Paragraph int         `json:"paragraph"`
	Hint      int         `json:"hint"`
	Trigger   HintTrigger `json:"trigger"`
}

// Payload is the adapted content handed to renderers.
type Payload struct {
	Title      string
	Text       string
	Paragraphs []string
	Sections   []Section
	Hints      []string
	HintHooks  []HintHook

	// Difficulty is in [0.1, 1.0].
	Difficulty float64

	// Confidence is the engine's confidence in the adaptation, in [0, 1].
	Confidence float64
}

// Clone returns a deep copy.
func (p Payload) Clone() Payload {
	out := p
	out.Paragraphs = append([]string(nil), p.Paragraphs...)
	out.Hints = append([]string(nil), p.Hints...)
	out.HintHooks = append([]HintHook(nil), p.HintHooks...)
	out.Sections = make([]Section, len(p.Sections))
	for i, s := range p.Sections {
		out.Sections[i] = s.clone()
	}
	return out
}

// SectionsOf returns the sections of the given kind.
func (p Payload) SectionsOf(kind SectionKind) []Section {
	var out []Section
	for _, s := range p.Sections {
		if s.Kind() == kind {
			out = append(out, s)
		}
	}
	return out
}

type sectionEnvelope struct {
	Kind    SectionKind `json:"kind"`
	Section Section     `json:"section"`
}

// MarshalJSON tags every section with its kind.
func (p Payload) MarshalJSON() ([]byte, error) {
	sections := make([]sectionEnvelope, len(p.Sections))
	for i, s := range p.Sections {
		sections[i] = sectionEnvelope{Kind: s.Kind(), Section: s}
	}
	return json.Marshal(struct {
		Title      string            `json:"title"`
		Text       string            `json:"text"`
		Paragraphs []string          `json:"paragraphs"`
		Sections   []sectionEnvelope `json:"sections"`
		Hints      []string          `json:"hints"`
		HintHooks  []HintHook        `json:"hint_hooks"`
		Difficulty float64           `json:"difficulty"`
		Confidence float64           `json:"confidence"`
	}{p.Title, p.Text, p.Paragraphs, sections, p.Hints, p.HintHooks, p.Difficulty, p.Confidence})
}

// AdaptationType names what an adaptation changed.
type AdaptationType string

const (
	AdaptDifficulty    AdaptationType = "difficulty"
	AdaptStyle         AdaptationType = "style"
	AdaptInterest      AdaptationType = "interest"
	AdaptAccessibility AdaptationType = "accessibility"
)

// Adaptation is an audit record of one content transformation.
type Adaptation struct {
	ID          string
	ContentID   string
	Type        AdaptationType
	BeforeState map[string]any
	AfterState  map[string]any
	Reasoning   string
	Confidence  float64
	Timestamp   time.Time
}

// Generated is the output of Generate.
type Generated struct {
	Payload Payload

	// DifficultyLevel is round(Difficulty*10), in [1, 10].
	DifficultyLevel int

	// PersonalizationLevel is in [0, 100].
	PersonalizationLevel int

	// Adaptations lists the profile-driven adaptations applied.
	Adaptations []Adaptation
}
