package speed

import "fmt"

// Speed is a learner's pacing setting, 1 (slowest, most scaffolded) to 5.
type Speed int

const (
	Min Speed = 1
	Max Speed = 5

	// Default is the speed assigned to a user with no recorded preference.
	Default Speed = 3
)

// Mode is a learning modality.
type Mode string

const (
	ModeVisual      Mode = "visual"
	ModeAuditory    Mode = "auditory"
	ModeKinesthetic Mode = "kinesthetic"
	ModeReading     Mode = "reading"
)

// Characteristics describe how content is shaped for a speed.
type Characteristics struct {
	ContentChunking string
	VisualSupport   string
	Pacing          string
	Repetition      string
	Complexity      string
	Navigation      string
}

// UIConfig is the set of named style knobs surfaced to renderers.
type UIConfig struct {
	FontSize   string `json:"font_size"`  // large, standard, compact
	Layout     string `json:"layout"`     // spacious, focused, balanced, dense, streamlined
	Animations string `json:"animations"` // slow, standard, quick
	Colors     string `json:"colors"`     // calming, vibrant, professional
}

// Profile is one row of the fixed speed table.
type Profile struct {
	Speed           Speed
	Name            string
	Primary         Mode
	Secondary       Mode
	Tertiary        Mode
	Characteristics Characteristics
	UIElements      []string
	UI              UIConfig
}

// profiles is the fixed speed table. Rows are indexed by speed-1.
var profiles = [5]Profile{
	{
		Speed:     1,
		Name:      "Explorer",
		Primary:   ModeVisual,
		Secondary: ModeKinesthetic,
		Tertiary:  ModeAuditory,
		Characteristics: Characteristics{
			ContentChunking: "micro",
			VisualSupport:   "extensive",
			Pacing:          "slow",
			Repetition:      "high",
			Complexity:      "simple",
			Navigation:      "guided",
		},
		UIElements: []string{"large-buttons", "progress-dots", "picture-cards", "read-aloud"},
		UI:         UIConfig{FontSize: "large", Layout: "spacious", Animations: "slow", Colors: "calming"},
	},
	{
		Speed:     2,
		Name:      "Builder",
		Primary:   ModeVisual,
		Secondary: ModeAuditory,
		Tertiary:  ModeKinesthetic,
		Characteristics: Characteristics{
			ContentChunking: "small",
			VisualSupport:   "high",
			Pacing:          "relaxed",
			Repetition:      "moderate-high",
			Complexity:      "basic",
			Navigation:      "guided",
		},
		UIElements: []string{"large-buttons", "step-indicator", "diagram-cards"},
		UI:         UIConfig{FontSize: "large", Layout: "focused", Animations: "slow", Colors: "calming"},
	},
	{
		Speed:     3,
		Name:      "Investigator",
		Primary:   ModeReading,
		Secondary: ModeVisual,
		Tertiary:  ModeAuditory,
		Characteristics: Characteristics{
			ContentChunking: "medium",
			VisualSupport:   "moderate",
			Pacing:          "steady",
			Repetition:      "moderate",
			Complexity:      "standard",
			Navigation:      "flexible",
		},
		UIElements: []string{"standard-buttons", "section-tabs", "inline-diagrams"},
		UI:         UIConfig{FontSize: "standard", Layout: "balanced", Animations: "standard", Colors: "vibrant"},
	},
	{
		Speed:     4,
		Name:      "Analyst",
		Primary:   ModeReading,
		Secondary: ModeAuditory,
		Tertiary:  ModeVisual,
		Characteristics: Characteristics{
			ContentChunking: "large",
			VisualSupport:   "supporting",
			Pacing:          "brisk",
			Repetition:      "low",
			Complexity:      "advanced",
			Navigation:      "self-directed",
		},
		UIElements: []string{"compact-buttons", "outline-nav", "reference-links"},
		UI:         UIConfig{FontSize: "standard", Layout: "dense", Animations: "quick", Colors: "vibrant"},
	},
	{
		Speed:     5,
		Name:      "Researcher",
		Primary:   ModeReading,
		Secondary: ModeKinesthetic,
		Tertiary:  ModeAuditory,
		Characteristics: Characteristics{
			ContentChunking: "full",
			VisualSupport:   "minimal",
			Pacing:          "fast",
			Repetition:      "minimal",
			Complexity:      "challenging",
			Navigation:      "open",
		},
		UIElements: []string{"compact-buttons", "keyboard-shortcuts", "challenge-panel"},
		UI:         UIConfig{FontSize: "compact", Layout: "streamlined", Animations: "quick", Colors: "professional"},
	},
}

// baseDifficulty maps speed to base difficulty in [0, 1].
var baseDifficulty = [5]float64{0.2, 0.4, 0.6, 0.8, 1.0}

// Valid reports whether s is within 1..5.
func Valid(s Speed) bool {
	return s >= Min && s <= Max
}

// Lookup returns the profile for a speed.
func Lookup(s Speed) (Profile, error) {
	if !Valid(s) {
		return Profile{}, fmt.Errorf("speed %d out of range [%d, %d]", s, Min, Max)
	}
	return profiles[s-1], nil
}

// MustLookup is Lookup for callers that already validated the speed.
func MustLookup(s Speed) Profile {
	p, err := Lookup(s)
	if err != nil {
		panic(err)
	}
	return p
}

// All returns the full table in speed order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles[:])
	return out
}

// BaseDifficulty returns the speed's base difficulty. Out-of-range speeds
// are clamped to the nearest valid speed.
func BaseDifficulty(s Speed) float64 {
	return baseDifficulty[Clamp(s)-1]
}

// Clamp forces s into 1..5.
func Clamp(s Speed) Speed {
	switch {
	case s < Min:
		return Min
	case s > Max:
		return Max
	}
	return s
}

// Modes returns the profile's primary, secondary and tertiary modes.
func (p Profile) Modes() []Mode {
	return []Mode{p.Primary, p.Secondary, p.Tertiary}
}

// HasMode reports whether m is one of the profile's three modes.
func (p Profile) HasMode(m Mode) bool {
	return p.Primary == m || p.Secondary == m || p.Tertiary == m
}
