package remote

import (
	"context"
	"fmt"
	"math"

	"github.com/abhisek/speedlearn/internal/recommend"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/speed"
)

// MetricsSource exposes aggregated session metrics. Satisfied by
// *session.Manager.
type MetricsSource interface {
	Metrics() session.Metrics
}

// AdvisorConfig holds the thresholds of the rule-based advisor.
type AdvisorConfig struct {
	// MinSessions is how many finished sessions are needed before the
	// advisor proposes a change.
	MinSessions int

	// HighEngagement and LowEngagement bound the "comfortable" band.
	HighEngagement float64
	LowEngagement  float64

	// LowCompletion and HighCompletion bound the completion rate below
	// which pace is reduced and above which it may be raised.
	LowCompletion  float64
	HighCompletion float64
}

// DefaultAdvisorConfig returns sensible defaults.
func DefaultAdvisorConfig() AdvisorConfig {
	return AdvisorConfig{
		MinSessions:    3,
		HighEngagement: 0.8,
		LowEngagement:  0.4,
		LowCompletion:  0.5,
		HighCompletion: 0.8,
	}
}

// SpeedRule proposes a speed from metrics. Rules are checked in order and
// the first match wins.
type SpeedRule interface {
	Name() string
	Suggest(m session.Metrics, current speed.Speed, cfg AdvisorConfig) (*recommend.Suggestion, bool)
}

// MetricsAdvisor is a rule-based recommend.SpeedAdvisor working from the
// session manager's aggregate metrics.
type MetricsAdvisor struct {
	source MetricsSource
	rules  []SpeedRule
	cfg    AdvisorConfig
}

// NewMetricsAdvisor creates an advisor with DefaultSpeedRules.
func NewMetricsAdvisor(source MetricsSource, cfg AdvisorConfig) *MetricsAdvisor {
	return &MetricsAdvisor{source: source, rules: DefaultSpeedRules(), cfg: cfg}
}

// DefaultSpeedRules returns the rules in priority order.
func DefaultSpeedRules() []SpeedRule {
	return []SpeedRule{
		&insufficientDataRule{},
		&struggleRule{},
		&masteryRule{},
	}
}

// SuggestOptimalSpeed implements recommend.SpeedAdvisor.
func (a *MetricsAdvisor) SuggestOptimalSpeed(ctx context.Context, _ string, current speed.Speed) (*recommend.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !speed.Valid(current) {
		return nil, fmt.Errorf("advisor: speed %d out of range", current)
	}
	m := a.source.Metrics()
	for _, r := range a.rules {
		if s, ok := r.Suggest(m, current, a.cfg); ok {
			return s, nil
		}
	}
	return &recommend.Suggestion{
		SuggestedSpeed: current,
		Reason:         "Current pace fits recent engagement",
		Confidence:     evidence(m.CompletedSessions),
	}, nil
}

// evidence grows with the number of finished sessions, capped at 0.95.
func evidence(completed int) float64 {
	return math.Min(0.95, 0.5+0.05*float64(completed))
}

func completionRate(m session.Metrics) float64 {
	if m.TotalSessions == 0 {
		return 0
	}
	return float64(m.CompletedSessions) / float64(m.TotalSessions)
}

type insufficientDataRule struct{}

func (r *insufficientDataRule) Name() string { return "insufficient-data" }

func (r *insufficientDataRule) Suggest(m session.Metrics, current speed.Speed, cfg AdvisorConfig) (*recommend.Suggestion, bool) {
	if m.TotalSessions >= cfg.MinSessions {
		return nil, false
	}
	return &recommend.Suggestion{
		SuggestedSpeed: current,
		Reason:         "Not enough sessions yet to judge pace",
		Confidence:     0.3,
	}, true
}

type struggleRule struct{}

func (r *struggleRule) Name() string { return "struggle" }

func (r *struggleRule) Suggest(m session.Metrics, current speed.Speed, cfg AdvisorConfig) (*recommend.Suggestion, bool) {
	if current <= speed.Min {
		return nil, false
	}
	lowEngagement := m.EngagementSamples > 0 && m.AvgEngagement < cfg.LowEngagement
	if !lowEngagement && completionRate(m) >= cfg.LowCompletion {
		return nil, false
	}
	return &recommend.Suggestion{
		SuggestedSpeed: current - 1,
		Reason:         "Engagement or completion is low; a gentler pace should help",
		Confidence:     evidence(m.TotalSessions),
	}, true
}

type masteryRule struct{}

func (r *masteryRule) Name() string { return "mastery" }

func (r *masteryRule) Suggest(m session.Metrics, current speed.Speed, cfg AdvisorConfig) (*recommend.Suggestion, bool) {
	if current >= speed.Max || m.EngagementSamples == 0 {
		return nil, false
	}
	// Both thresholds must be strictly exceeded.
	if m.AvgEngagement <= cfg.HighEngagement || completionRate(m) <= cfg.HighCompletion {
		return nil, false
	}
	return &recommend.Suggestion{
		SuggestedSpeed: current + 1,
		Reason:         "Consistently high engagement and completion; ready for a faster pace",
		Confidence:     evidence(m.CompletedSessions),
	}, true
}
