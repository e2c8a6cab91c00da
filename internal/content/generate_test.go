package content

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/speedlearn/internal/speed"
)

const photosynthesis = "Plants make their own food through photosynthesis. " +
	"Sunlight is really important because it gives the energy plants need. " +
	"Leaves contain chlorophyll, which is a green pigment that captures light. " +
	"Water travels up from the roots while carbon dioxide enters through tiny pores. " +
	"The plant turns these ingredients into sugar and releases oxygen into the air."

func testSource() Source {
	return Source{LessonID: "L1", Title: "Photosynthesis", Text: photosynthesis}
}

func intPtr(v int) *int { return &v }

func TestBaseDifficulty_BySpeedAndLength(t *testing.T) {
	long := strings.Repeat("a", LongTextThreshold+1)
	tests := []struct {
		name  string
		text  string
		speed speed.Speed
		want  float64
	}{
		{"speed 1 short", "short", 1, 0.2},
		{"speed 2 short", "short", 2, 0.4},
		{"speed 3 long", long, 3, 0.7},
		{"speed 5 long capped", long, 5, 1.0},
		{"exactly threshold", strings.Repeat("a", LongTextThreshold), 2, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, BaseDifficulty(tt.text, tt.speed), 1e-9)
		})
	}
}

func TestPersonalize_Order(t *testing.T) {
	tests := []struct {
		name    string
		d       float64
		profile *PersonalizationProfile
		want    float64
	}{
		{"nil profile", 0.4, nil, 0.4},
		{"complexity blend", 0.4, &PersonalizationProfile{PreferredComplexity: intPtr(80)}, 0.6},
		{"challenges floor", 0.15, &PersonalizationProfile{Challenges: []string{"reading"}}, 0.1},
		{"strengths ceiling", 0.95, &PersonalizationProfile{Strengths: []string{"math"}}, 1.0},
		{
			"all three in order",
			0.6,
			&PersonalizationProfile{PreferredComplexity: intPtr(20), Challenges: []string{"x"}, Strengths: []string{"y"}},
			0.4, // (0.6+0.2)/2 = 0.4 -> 0.3 -> 0.4
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Personalize(tt.d, tt.profile), 1e-9)
		})
	}
}

func TestLevel(t *testing.T) {
	assert.Equal(t, 4, Level(0.4))
	assert.Equal(t, 3, Level(0.2+0.1))
	assert.Equal(t, 1, Level(0.1))
	assert.Equal(t, 10, Level(1.0))
	assert.Equal(t, 1, Level(0))
}

func TestGenerate_Speed2NoProfile(t *testing.T) {
	g, err := Generate(testSource(), 2, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 4, g.DifficultyLevel)
	assert.InDelta(t, 0.4, g.Payload.Difficulty, 1e-9)
	assert.Equal(t, 0, g.PersonalizationLevel)
	assert.Empty(t, g.Adaptations)
	assert.Len(t, g.Payload.Hints, 3)
	assert.Len(t, g.Payload.HintHooks, 3)

	// Speed 2 carries visual and kinesthetic modes.
	assert.Len(t, g.Payload.SectionsOf(KindVisual), 1)
	assert.Len(t, g.Payload.SectionsOf(KindInteractive), 1)
	assert.Len(t, g.Payload.SectionsOf(KindConversational), 1)

	assert.NotContains(t, g.Payload.Text, "really")
	assert.InDelta(t, 0.7, g.Payload.Confidence, 1e-9)
}

func TestGenerate_ScaffoldingFollowsModes(t *testing.T) {
	g, err := Generate(testSource(), 3, nil, time.Now())
	require.NoError(t, err)
	assert.Len(t, g.Payload.SectionsOf(KindVisual), 1)
	assert.Empty(t, g.Payload.SectionsOf(KindInteractive))
	assert.Equal(t, photosynthesis, g.Payload.Text)

	g, err = Generate(testSource(), 5, nil, time.Now())
	require.NoError(t, err)
	assert.Empty(t, g.Payload.SectionsOf(KindVisual))
	assert.Len(t, g.Payload.SectionsOf(KindInteractive), 1)
	assert.Contains(t, g.Payload.Text, elaborationMarker)
	assert.Contains(t, g.Payload.Text, challengeMarker)
}

func TestGenerate_InvalidSpeed(t *testing.T) {
	_, err := Generate(testSource(), 7, nil, time.Now())
	assert.Error(t, err)
}

func TestGenerate_WithProfile(t *testing.T) {
	profile := &PersonalizationProfile{
		UserID:             "u1",
		LearningStyle:      StyleKinesthetic,
		Interests:          []string{"soccer"},
		Strengths:          []string{"observation"},
		AccessibilityNeeds: []string{"screen-reader"},
	}
	g, err := Generate(testSource(), 2, profile, time.Now())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, g.Payload.Difficulty, 1e-9)
	assert.Equal(t, 5, g.DifficultyLevel)
	assert.Equal(t, 70, g.PersonalizationLevel)
	assert.Equal(t, KindInteractive, g.Payload.Sections[0].Kind())

	types := make([]AdaptationType, 0, len(g.Adaptations))
	for _, a := range g.Adaptations {
		types = append(types, a.Type)
	}
	assert.ElementsMatch(t, []AdaptationType{AdaptInterest, AdaptStyle, AdaptAccessibility}, types)

	for _, s := range g.Payload.SectionsOf(KindVisual) {
		for _, e := range s.(VisualSection).Elements {
			assert.NotEmpty(t, e.AltText)
		}
	}
	conv := g.Payload.SectionsOf(KindConversational)[0].(ConversationalSection)
	assert.Contains(t, conv.Prompts[len(conv.Prompts)-1], "soccer")
}

func TestConfidence(t *testing.T) {
	long := strings.Repeat("x", confidenceTextSize+1)
	assert.InDelta(t, 0.7, Confidence("short", false), 1e-9)
	assert.InDelta(t, 0.9, Confidence("short", true), 1e-9)
	assert.InDelta(t, 0.8, Confidence(long, false), 1e-9)
	assert.InDelta(t, 1.0, Confidence(long, true), 1e-9)
}

func TestPayload_MarshalTagsSections(t *testing.T) {
	g, err := Generate(testSource(), 1, nil, time.Now())
	require.NoError(t, err)

	raw, err := json.Marshal(g.Payload)
	require.NoError(t, err)

	var decoded struct {
		Sections []struct {
			Kind string `json:"kind"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotEmpty(t, decoded.Sections)
	assert.Equal(t, "visual", decoded.Sections[0].Kind)
}
