package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/speedlearn/internal/llm"
	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/speed"
)

// SpeedAdviceSchema is the structured output expected from the LLM advisor.
var SpeedAdviceSchema = &llm.Schema{
	Name:        "speed-advice",
	Description: "A recommended learning speed with reasoning",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"suggested_speed": map[string]any{
				"type":    "integer",
				"minimum": 1,
				"maximum": 5,
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "One sentence a learner or parent can understand",
			},
			"confidence": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 1,
			},
		},
		"required":             []any{"suggested_speed", "reason", "confidence"},
		"additionalProperties": false,
	},
}

// LLMSpeedAdvisor asks a language model to judge pace from session metrics.
type LLMSpeedAdvisor struct {
	provider llm.Provider
	source   MetricsSource
}

// NewLLMSpeedAdvisor creates an LLM-backed recommend.SpeedAdvisor.
func NewLLMSpeedAdvisor(provider llm.Provider, source MetricsSource) *LLMSpeedAdvisor {
	return &LLMSpeedAdvisor{provider: provider, source: source}
}

type adviceOutput struct {
	SuggestedSpeed int     `json:"suggested_speed"`
	Reason         string  `json:"reason"`
	Confidence     float64 `json:"confidence"`
}

// SuggestOptimalSpeed implements recommend.SpeedAdvisor.
func (a *LLMSpeedAdvisor) SuggestOptimalSpeed(ctx context.Context, _ string, current speed.Speed) (*recommend.Suggestion, error) {
	if !speed.Valid(current) {
		return nil, fmt.Errorf("advisor: speed %d out of range", current)
	}

	resp, err := a.provider.Generate(llm.WithPurpose(ctx, llm.PurposeSpeedAdvisor), llm.Request{
		System:      speedAdvisorSystemPrompt,
		Messages:    llm.UserMessage(a.buildMessage(current)),
		Schema:      SpeedAdviceSchema,
		MaxTokens:   256,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("speed advisor: %w", err)
	}

	out, err := llm.Decode[adviceOutput](resp)
	if err != nil {
		return nil, fmt.Errorf("parse speed advice: %w", err)
	}
	return &recommend.Suggestion{
		SuggestedSpeed: speed.Speed(out.SuggestedSpeed),
		Reason:         out.Reason,
		Confidence:     out.Confidence,
	}, nil
}

const speedAdvisorSystemPrompt = `You advise on the learning pace of a K-12 science learner. Recommend a speed from 1 (slowest, most scaffolded) to 5 (fastest, least scaffolded). Only move more than one step when the evidence is overwhelming. Report low confidence when there is little data.`

func (a *LLMSpeedAdvisor) buildMessage(current speed.Speed) string {
	m := a.source.Metrics()
	var b strings.Builder

	b.WriteString("Speed levels:\n")
	for _, p := range speed.All() {
		fmt.Fprintf(&b, "- %d %s: %s pacing, %s complexity\n",
			p.Speed, p.Name, p.Characteristics.Pacing, p.Characteristics.Complexity)
	}

	fmt.Fprintf(&b, "\nCurrent speed: %d\n", current)
	fmt.Fprintf(&b, "Sessions: %d total, %d completed\n", m.TotalSessions, m.CompletedSessions)
	fmt.Fprintf(&b, "Average session length: %s\n", m.AvgSessionDuration.Round(time.Second))
	fmt.Fprintf(&b, "Average interactions per session: %.1f\n", m.AvgInteractions)
	if m.EngagementSamples > 0 {
		fmt.Fprintf(&b, "Average engagement: %.2f over %d samples\n", m.AvgEngagement, m.EngagementSamples)
	} else {
		b.WriteString("Average engagement: unknown\n")
	}
	return b.String()
}
