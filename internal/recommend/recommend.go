// Package recommend proposes learning-speed changes from aggregated session
// behaviour, throttled per user.
package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/speed"
)

// Suggestion is what a SpeedAdvisor proposes.
type Suggestion struct {
	SuggestedSpeed speed.Speed
	Reason         string
	Confidence     float64
}

// SpeedAdvisor suggests the speed a learner should be on.
type SpeedAdvisor interface {
	SuggestOptimalSpeed(ctx context.Context, userID string, current speed.Speed) (*Suggestion, error)
}

// Invalidator drops cached content. Satisfied by *cache.Coordinator.
type Invalidator interface {
	Invalidate(f cache.Filter) int
}

// Recommendation is a stored suggestion with the speed it was made against.
type Recommendation struct {
	SuggestedSpeed speed.Speed
	CurrentSpeed   speed.Speed
	Reason         string
	Confidence     float64
	Timestamp      time.Time
}

// State is a snapshot of one user's recommendation state.
type State struct {
	// History is newest first.
	History        []Recommendation
	ShowSuggestion bool
	SpeedChanges   int
	Err            error
}

// Latest returns the newest recommendation, if any.
func (s State) Latest() (Recommendation, bool) {
	if len(s.History) == 0 {
		return Recommendation{}, false
	}
	return s.History[0], true
}

// Config holds engine settings.
type Config struct {
	// Throttle is the minimum age of the newest recommendation before the
	// advisor is consulted again.
	Throttle time.Duration

	// HistorySize bounds the stored recommendations per user.
	HistorySize int

	// ConfidenceThreshold is the confidence a suggestion must exceed to be surfaced.
	ConfidenceThreshold float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Throttle:            5 * time.Minute,
		HistorySize:         5,
		ConfidenceThreshold: 0.7,
	}
}

type userState struct {
	history        []Recommendation
	showSuggestion bool
	speedChanges   int
	inFlight       bool
	err            error
}

// Engine tracks speed recommendations per user.
type Engine struct {
	advisor SpeedAdvisor
	inv     Invalidator
	cfg     Config
	log     *logger.Logger
	now     func() time.Time

	mu    sync.Mutex
	users map[string]*userState
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for throttling and timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine.
func NewEngine(advisor SpeedAdvisor, inv Invalidator, cfg Config, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		advisor: advisor,
		inv:     inv,
		cfg:     cfg,
		log:     log.With("component", "recommend"),
		now:     time.Now,
		users:   make(map[string]*userState),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) userLocked(userID string) *userState {
	u, ok := e.users[userID]
	if !ok {
		u = &userState{}
		e.users[userID] = u
	}
	return u
}

// RequestRecommendation asks the advisor for a speed suggestion. It returns
// nil without consulting the advisor when the newest stored recommendation
// is younger than the throttle window or a request is already running.
func (e *Engine) RequestRecommendation(ctx context.Context, userID string, current speed.Speed) (*Recommendation, error) {
	if userID == "" || !speed.Valid(current) {
		return nil, nil
	}

	e.mu.Lock()
	u := e.userLocked(userID)
	if u.inFlight || (len(u.history) > 0 && e.now().Sub(u.history[0].Timestamp) < e.cfg.Throttle) {
		e.mu.Unlock()
		e.log.Debug("recommendation throttled", "user_id", userID)
		return nil, nil
	}
	u.inFlight = true
	e.mu.Unlock()

	sug, err := e.advisor.SuggestOptimalSpeed(ctx, userID, current)

	e.mu.Lock()
	defer e.mu.Unlock()
	u.inFlight = false

	if err != nil {
		u.err = fmt.Errorf("suggest optimal speed: %w", err)
		e.log.Warn("speed advisor failed", "user_id", userID, "error", err)
		return nil, u.err
	}
	u.err = nil
	if sug == nil || !speed.Valid(sug.SuggestedSpeed) {
		return nil, nil
	}

	rec := Recommendation{
		SuggestedSpeed: sug.SuggestedSpeed,
		CurrentSpeed:   current,
		Reason:         sug.Reason,
		Confidence:     lo.Clamp(sug.Confidence, 0, 1),
		Timestamp:      e.now(),
	}
	u.history = append([]Recommendation{rec}, u.history...)
	if len(u.history) > e.cfg.HistorySize {
		u.history = u.history[:e.cfg.HistorySize]
	}
	u.showSuggestion = ShouldSurface(rec, e.cfg.ConfidenceThreshold)

	e.log.Info("speed recommendation",
		"user_id", userID,
		"current", int(current),
		"suggested", int(rec.SuggestedSpeed),
		"confidence", rec.Confidence,
		"surfaced", u.showSuggestion)
	return &rec, nil
}

// ShouldSurface reports whether a recommendation is confident enough and
// actually proposes a change.
func ShouldSurface(r Recommendation, threshold float64) bool {
	return r.Confidence > threshold && r.SuggestedSpeed != r.CurrentSpeed
}

// Accept records that the user switched to newSpeed. It clears the
// suggestion flag and drops every cached lesson variant for newSpeed so the
// learner gets freshly generated content. It returns the number of cache
// entries removed and false, with no effect, for an invalid request.
func (e *Engine) Accept(userID string, newSpeed speed.Speed) (int, bool) {
	if userID == "" || !speed.Valid(newSpeed) {
		return 0, false
	}

	e.mu.Lock()
	u := e.userLocked(userID)
	u.showSuggestion = false
	u.speedChanges++
	e.mu.Unlock()

	removed := 0
	if e.inv != nil {
		removed = e.inv.Invalidate(cache.Filter{Speed: newSpeed})
	}
	e.log.Info("speed change accepted", "user_id", userID, "speed", int(newSpeed), "invalidated", removed)
	return removed, true
}

// Dismiss hides the current suggestion.
func (e *Engine) Dismiss(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if u, ok := e.users[userID]; ok {
		u.showSuggestion = false
	}
}

// State returns a snapshot of the user's recommendation state.
func (e *Engine) State(userID string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	u, ok := e.users[userID]
	if !ok {
		return State{}
	}
	return State{
		History:        append([]Recommendation(nil), u.history...),
		ShowSuggestion: u.showSuggestion,
		SpeedChanges:   u.speedChanges,
		Err:            u.err,
	}
}
