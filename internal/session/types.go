package session

import (
	"context"
	"time"

	"github.com/samber/lo"
)

// InteractionType is the kind of learner action being recorded.
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionClick    InteractionType = "click"
	InteractionComplete InteractionType = "complete"
	InteractionSkip     InteractionType = "skip"
)

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionClick, InteractionComplete, InteractionSkip:
		return true
	}
	return false
}

// Interaction is one learner action inside a lesson.
type Interaction struct {
	UserID       string
	LessonID     string
	AdaptationID string
	Type         InteractionType

	// Data carries free-form signals, e.g. {"signal": "struggle"}.
	Data map[string]any

	// EngagementScore is the client's 0-1 engagement estimate, when it has one.
	EngagementScore *float64

	TimeSpentSeconds float64
	Timestamp        time.Time
}

// LearningSession is the record of one learner working through one lesson.
type LearningSession struct {
	SessionID       string
	UserID          string
	LessonID        string
	StartTime       time.Time
	EndTime         *time.Time
	Interactions    []Interaction
	TotalEngagement float64
	Completed       bool
}

// Engagement scores the session as of now, or as of EndTime once ended.
func (s *LearningSession) Engagement(now time.Time) float64 {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	hasComplete := lo.ContainsBy(s.Interactions, func(ix Interaction) bool {
		return ix.Type == InteractionComplete
	})
	return Engagement(end.Sub(s.StartTime), len(s.Interactions), hasComplete)
}

// scored returns how many interactions carried an engagement score.
func (s *LearningSession) scored() int {
	return lo.CountBy(s.Interactions, func(ix Interaction) bool {
		return ix.EngagementScore != nil
	})
}

func (s *LearningSession) clone() *LearningSession {
	out := *s
	out.Interactions = append([]Interaction(nil), s.Interactions...)
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	return &out
}

// Metrics aggregates every ended session in the process.
type Metrics struct {
	TotalSessions     int
	CompletedSessions int
	ReplacedSessions  int
	TotalInteractions int

	AvgSessionDuration time.Duration
	AvgInteractions    float64

	// AvgEngagement is the mean engagement score over all scored
	// interactions; EngagementSamples is how many were seen.
	AvgEngagement     float64
	EngagementSamples int
}

// TelemetrySink receives interactions for durable tracking.
type TelemetrySink interface {
	TrackUserInteraction(ctx context.Context, ix Interaction) error
}

// Config holds Manager settings.
type Config struct {
	// FlushTimeout bounds one telemetry delivery attempt.
	FlushTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{FlushTimeout: 10 * time.Second}
}
