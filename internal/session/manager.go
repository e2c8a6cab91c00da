package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/speedlearn/internal/logger"
)

var (
	// ErrNoActiveSession is returned when recording into a session that was never started or has ended.
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidInteraction is returned for an interaction of unknown type.
	ErrInvalidInteraction = errors.New("invalid interaction type")
)

type pendingItem struct {
	id       uint64
	ix       Interaction
	inFlight bool
}

// Manager tracks one active learning session per user, forwards
// interactions to telemetry and folds ended sessions into Metrics.
type Manager struct {
	sink TelemetrySink
	cfg  Config
	log  *logger.Logger
	now  func() time.Time

	mu      sync.Mutex
	active  map[string]*LearningSession
	pending []*pendingItem
	nextID  uint64
	metrics Metrics

	flushes sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for session timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithMetrics seeds the aggregate metrics, e.g. from a stored snapshot.
func WithMetrics(mt Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// NewManager creates a Manager delivering telemetry to sink.
func NewManager(sink TelemetrySink, cfg Config, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		sink:   sink,
		cfg:    cfg,
		log:    log.With("component", "session"),
		now:    time.Now,
		active: make(map[string]*LearningSession),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// StartSession opens a new session for the user. Any session the user
// already has open is discarded without being folded into Metrics.
func (m *Manager) StartSession(userID, lessonID string) *LearningSession {
	if userID == "" || lessonID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.active[userID]; ok {
		m.metrics.ReplacedSessions++
		m.log.Warn("replacing active session",
			"user_id", userID,
			"session_id", prev.SessionID,
			"lesson_id", prev.LessonID,
			"interactions", len(prev.Interactions))
	}

	s := &LearningSession{
		SessionID: uuid.NewString(),
		UserID:    userID,
		LessonID:  lessonID,
		StartTime: m.now(),
	}
	m.active[userID] = s
	m.log.Debug("session started", "user_id", userID, "session_id", s.SessionID, "lesson_id", lessonID)
	return s.clone()
}

// AddInteraction appends ix to the user's active session and schedules
// telemetry delivery. An interaction of unknown type or for a user without
// an active session is rejected with no effect.
func (m *Manager) AddInteraction(ix Interaction) error {
	if !ix.Type.Valid() {
		return fmt.Errorf("add interaction for %q: %w: %q", ix.UserID, ErrInvalidInteraction, ix.Type)
	}
	m.mu.Lock()
	s, ok := m.active[ix.UserID]
	if !ok || ix.UserID == "" {
		m.mu.Unlock()
		return fmt.Errorf("add interaction for %q: %w", ix.UserID, ErrNoActiveSession)
	}
	if ix.Timestamp.IsZero() {
		ix.Timestamp = m.now()
	}
	if ix.LessonID == "" {
		ix.LessonID = s.LessonID
	}
	s.Interactions = append(s.Interactions, ix)
	if ix.EngagementScore != nil {
		s.TotalEngagement += *ix.EngagementScore
	}
	item := m.enqueueLocked(ix)
	m.mu.Unlock()

	m.flushes.Add(1)
	go func() {
		defer m.flushes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.FlushTimeout)
		defer cancel()
		m.flush(ctx, item)
	}()
	return nil
}

// EndSession closes the user's active session, folds it into Metrics and
// returns it. It returns nil when there is no active session.
func (m *Manager) EndSession(userID string, completed bool) *LearningSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.active[userID]
	if !ok {
		return nil
	}
	delete(m.active, userID)

	end := m.now()
	s.EndTime = &end
	s.Completed = completed
	m.foldLocked(s)

	m.log.Info("session ended",
		"user_id", userID,
		"session_id", s.SessionID,
		"completed", completed,
		"interactions", len(s.Interactions),
		"duration", end.Sub(s.StartTime))
	return s.clone()
}

func (m *Manager) foldLocked(s *LearningSession) {
	mt := &m.metrics
	n := float64(mt.TotalSessions)
	duration := s.EndTime.Sub(s.StartTime)

	mt.AvgSessionDuration = time.Duration((float64(mt.AvgSessionDuration)*n + float64(duration)) / (n + 1))
	mt.AvgInteractions = (mt.AvgInteractions*n + float64(len(s.Interactions))) / (n + 1)
	mt.TotalSessions++
	mt.TotalInteractions += len(s.Interactions)
	if s.Completed {
		mt.CompletedSessions++
	}

	if scored := s.scored(); scored > 0 {
		sessionAvg := s.TotalEngagement / float64(scored)
		samples := float64(mt.EngagementSamples)
		mt.AvgEngagement = (mt.AvgEngagement*samples + sessionAvg*float64(scored)) / (samples + float64(scored))
		mt.EngagementSamples += scored
	}
}

// Active returns a copy of the user's open session.
func (m *Manager) Active(userID string) (*LearningSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.active[userID]
	if !ok {
		return nil, false
	}
	return s.clone(), true
}

// Metrics returns a snapshot of the aggregate session metrics.
func (m *Manager) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metrics
}

// Pending returns how many interactions are still awaiting delivery.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// RetryPending re-delivers every pending interaction not already being
// delivered and returns how many succeeded.
func (m *Manager) RetryPending(ctx context.Context) int {
	m.mu.Lock()
	var batch []*pendingItem
	for _, p := range m.pending {
		if !p.inFlight {
			p.inFlight = true
			batch = append(batch, p)
		}
	}
	m.mu.Unlock()

	delivered := 0
	for _, p := range batch {
		if m.flush(ctx, p) {
			delivered++
		}
	}
	if len(batch) > 0 {
		m.log.Debug("retried pending telemetry", "attempted", len(batch), "delivered", delivered)
	}
	return delivered
}

// Wait blocks until all in-progress background deliveries finish.
func (m *Manager) Wait() {
	m.flushes.Wait()
}

func (m *Manager) enqueueLocked(ix Interaction) *pendingItem {
	m.nextID++
	p := &pendingItem{id: m.nextID, ix: ix, inFlight: true}
	m.pending = append(m.pending, p)
	return p
}

// flush delivers one pending item. Success removes it; failure leaves it
// pending for the next retry.
func (m *Manager) flush(ctx context.Context, p *pendingItem) bool {
	err := m.sink.TrackUserInteraction(ctx, p.ix)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		p.inFlight = false
		m.log.Warn("telemetry delivery failed",
			"user_id", p.ix.UserID,
			"lesson_id", p.ix.LessonID,
			"type", string(p.ix.Type),
			"error", err)
		return false
	}
	m.pending = slices.DeleteFunc(m.pending, func(q *pendingItem) bool { return q.id == p.id })
	return true
}
