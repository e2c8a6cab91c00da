package session

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/speedlearn/internal/logger"
)

type recordingSink struct {
	mu   sync.Mutex
	fail bool
	got  []Interaction
}

func (s *recordingSink) TrackUserInteraction(_ context.Context, ix Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("telemetry endpoint unreachable")
	}
	s.got = append(s.got, ix)
	return nil
}

func (s *recordingSink) setFail(v bool) {
	s.mu.Lock()
	s.fail = v
	s.mu.Unlock()
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(sink TelemetrySink) (*Manager, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewManager(sink, DefaultConfig(), logger.NewNop(), WithClock(c.now)), c
}

func score(v float64) *float64 { return &v }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEngagement(t *testing.T) {
	tests := []struct {
		name        string
		elapsed     time.Duration
		count       int
		hasComplete bool
		want        float64
	}{
		{"nothing", 0, 0, false, 0.15},
		{"saturated with complete", 10 * time.Minute, 20, true, 1.0},
		{"saturated without complete", 6 * time.Minute, 11, false, 0.85},
		{"half time half volume", 150 * time.Second, 5, true, 0.15 + 0.2 + 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Engagement(tt.elapsed, tt.count, tt.hasComplete); !approx(got, tt.want) {
				t.Errorf("Engagement = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddInteraction_NoActiveSession(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestManager(sink)

	if err := m.AddInteraction(Interaction{UserID: "u1", Type: InteractionView}); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("AddInteraction() = %v, want ErrNoActiveSession", err)
	}
	m.Wait()
	if sink.count() != 0 || m.Pending() != 0 {
		t.Error("no telemetry expected without an active session")
	}
}

func TestAddInteraction_RejectsUnknownType(t *testing.T) {
	sink := &recordingSink{}
	m, _ := newTestManager(sink)
	m.StartSession("u1", "L1")

	for _, typ := range []InteractionType{"", "hover", "VIEW"} {
		if err := m.AddInteraction(Interaction{UserID: "u1", Type: typ}); !errors.Is(err, ErrInvalidInteraction) {
			t.Errorf("AddInteraction(%q) = %v, want ErrInvalidInteraction", typ, err)
		}
	}
	m.Wait()
	s, _ := m.Active("u1")
	if len(s.Interactions) != 0 || sink.count() != 0 || m.Pending() != 0 {
		t.Error("rejected interactions must not be recorded or delivered")
	}
}

func TestSessionLifecycle_EngagementAndMetrics(t *testing.T) {
	sink := &recordingSink{}
	m, c := newTestManager(sink)

	s := m.StartSession("u1", "L1")
	if s == nil || s.SessionID == "" {
		t.Fatal("expected a session with an id")
	}

	for range 11 {
		c.advance(time.Duration(360/11.0*float64(time.Second)) + time.Millisecond)
		if err := m.AddInteraction(Interaction{UserID: "u1", Type: InteractionClick}); err != nil {
			t.Fatalf("AddInteraction() = %v", err)
		}
	}

	active, ok := m.Active("u1")
	if !ok {
		t.Fatal("expected an active session")
	}
	if got := active.Engagement(c.now()); !approx(got, 0.85) {
		t.Errorf("engagement = %v, want 0.85", got)
	}

	ended := m.EndSession("u1", true)
	if ended == nil || !ended.Completed || ended.EndTime == nil {
		t.Fatalf("unexpected ended session: %+v", ended)
	}
	if ended.Interactions[0].LessonID != "L1" {
		t.Errorf("interaction lesson id = %q, want L1", ended.Interactions[0].LessonID)
	}

	m.Wait()
	if sink.count() != 11 {
		t.Errorf("delivered = %d, want 11", sink.count())
	}

	mt := m.Metrics()
	if mt.TotalSessions != 1 || mt.CompletedSessions != 1 || mt.TotalInteractions != 11 {
		t.Errorf("metrics = %+v", mt)
	}
	if _, ok := m.Active("u1"); ok {
		t.Error("session should be cleared after end")
	}
	if m.EndSession("u1", true) != nil {
		t.Error("ending twice should return nil")
	}
}

func TestEndSession_WeightedEngagement(t *testing.T) {
	m, _ := newTestManager(&recordingSink{})

	m.StartSession("u1", "L1")
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionView, EngagementScore: score(0.2)})
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionClick, EngagementScore: score(0.8)})
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionClick})
	m.EndSession("u1", false)

	mt := m.Metrics()
	if !approx(mt.AvgEngagement, 0.5) || mt.EngagementSamples != 2 {
		t.Errorf("avg engagement = %v over %d samples, want 0.5 over 2", mt.AvgEngagement, mt.EngagementSamples)
	}

	m.StartSession("u2", "L1")
	m.AddInteraction(Interaction{UserID: "u2", Type: InteractionView, EngagementScore: score(1.0)})
	m.EndSession("u2", true)

	mt = m.Metrics()
	if !approx(mt.AvgEngagement, (0.2+0.8+1.0)/3) {
		t.Errorf("avg engagement = %v, want %v", mt.AvgEngagement, (0.2+0.8+1.0)/3)
	}
	if !approx(mt.AvgInteractions, 2) {
		t.Errorf("avg interactions = %v, want 2", mt.AvgInteractions)
	}
	m.Wait()
}

func TestWithMetrics_ContinuesRunningAverages(t *testing.T) {
	seed := Metrics{TotalSessions: 3, CompletedSessions: 2, AvgEngagement: 0.6, EngagementSamples: 3, AvgInteractions: 4}
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewManager(&recordingSink{}, DefaultConfig(), logger.NewNop(), WithClock(c.now), WithMetrics(seed))

	m.StartSession("u1", "L1")
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionView, EngagementScore: score(1.0)})
	m.EndSession("u1", true)
	m.Wait()

	mt := m.Metrics()
	if mt.TotalSessions != 4 || mt.CompletedSessions != 3 {
		t.Errorf("completed/total = %d/%d, want 3/4", mt.CompletedSessions, mt.TotalSessions)
	}
	if !approx(mt.AvgEngagement, 0.7) || mt.EngagementSamples != 4 {
		t.Errorf("avg engagement = %v over %d, want 0.7 over 4", mt.AvgEngagement, mt.EngagementSamples)
	}
	if !approx(mt.AvgInteractions, 3.25) {
		t.Errorf("avg interactions = %v, want 3.25", mt.AvgInteractions)
	}
}

func TestStartSession_ReplacesWithoutFolding(t *testing.T) {
	m, _ := newTestManager(&recordingSink{})

	first := m.StartSession("u1", "L1")
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionView})
	second := m.StartSession("u1", "L2")

	if first.SessionID == second.SessionID {
		t.Error("expected a new session id")
	}
	active, _ := m.Active("u1")
	if active.LessonID != "L2" || len(active.Interactions) != 0 {
		t.Errorf("active session = %+v, want fresh L2 session", active)
	}

	mt := m.Metrics()
	if mt.ReplacedSessions != 1 || mt.TotalSessions != 0 {
		t.Errorf("metrics = %+v, want 1 replaced and 0 folded", mt)
	}
	m.Wait()
}

func TestTelemetryFailureStaysPending(t *testing.T) {
	sink := &recordingSink{fail: true}
	m, _ := newTestManager(sink)

	m.StartSession("u1", "L1")
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionView})
	m.AddInteraction(Interaction{UserID: "u1", Type: InteractionSkip})
	m.Wait()

	if m.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", m.Pending())
	}
	if n := m.RetryPending(context.Background()); n != 0 {
		t.Errorf("retry delivered %d while sink is failing", n)
	}

	sink.setFail(false)
	if n := m.RetryPending(context.Background()); n != 2 {
		t.Errorf("retry delivered %d, want 2", n)
	}
	if m.Pending() != 0 {
		t.Errorf("pending = %d, want 0", m.Pending())
	}
}

func TestInteractionType_Valid(t *testing.T) {
	for _, typ := range []InteractionType{InteractionView, InteractionClick, InteractionComplete, InteractionSkip} {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	if InteractionType("scroll").Valid() {
		t.Error("scroll should not be valid")
	}
}
