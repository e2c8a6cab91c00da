package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/speed"
)

type stubAdvisor struct {
	calls int
	sug   *Suggestion
	err   error
}

func (a *stubAdvisor) SuggestOptimalSpeed(context.Context, string, speed.Speed) (*Suggestion, error) {
	a.calls++
	return a.sug, a.err
}

type stubInvalidator struct {
	filters []cache.Filter
}

func (s *stubInvalidator) Invalidate(f cache.Filter) int {
	s.filters = append(s.filters, f)
	return 3
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestEngine(a SpeedAdvisor, inv Invalidator) (*Engine, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewEngine(a, inv, DefaultConfig(), logger.NewNop(), WithClock(c.now)), c
}

func TestShouldSurface(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		suggested  speed.Speed
		want       bool
	}{
		{"just below threshold", 0.69, 4, false},
		{"just above threshold", 0.71, 4, true},
		{"exactly threshold", 0.7, 4, false},
		{"same speed", 0.95, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Recommendation{SuggestedSpeed: tt.suggested, CurrentSpeed: 3, Confidence: tt.confidence}
			assert.Equal(t, tt.want, ShouldSurface(r, 0.7))
		})
	}
}

func TestRequestRecommendation_Throttled(t *testing.T) {
	adv := &stubAdvisor{sug: &Suggestion{SuggestedSpeed: 4, Confidence: 0.9, Reason: "fast and accurate"}}
	e, c := newTestEngine(adv, nil)
	ctx := context.Background()

	rec, err := e.RequestRecommendation(ctx, "u1", 3)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, speed.Speed(3), rec.CurrentSpeed)
	assert.Equal(t, c.now(), rec.Timestamp)

	c.t = c.t.Add(4 * time.Minute)
	rec, err = e.RequestRecommendation(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 1, adv.calls)

	c.t = c.t.Add(2 * time.Minute)
	rec, err = e.RequestRecommendation(ctx, "u1", 3)
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, 2, adv.calls)
}

func TestRequestRecommendation_HistoryBounded(t *testing.T) {
	adv := &stubAdvisor{}
	e, c := newTestEngine(adv, nil)

	for i := range 7 {
		adv.sug = &Suggestion{SuggestedSpeed: speed.Speed(i%5 + 1), Confidence: 0.5}
		_, err := e.RequestRecommendation(context.Background(), "u1", 3)
		require.NoError(t, err)
		c.t = c.t.Add(6 * time.Minute)
	}

	st := e.State("u1")
	require.Len(t, st.History, 5)
	assert.Equal(t, speed.Speed(2), st.History[0].SuggestedSpeed, "newest first")
	assert.True(t, st.History[0].Timestamp.After(st.History[4].Timestamp))
}

func TestRequestRecommendation_Surfacing(t *testing.T) {
	adv := &stubAdvisor{sug: &Suggestion{SuggestedSpeed: 2, Confidence: 0.8}}
	e, _ := newTestEngine(adv, nil)

	_, err := e.RequestRecommendation(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.True(t, e.State("u1").ShowSuggestion)

	e.Dismiss("u1")
	st := e.State("u1")
	assert.False(t, st.ShowSuggestion)
	assert.Equal(t, 0, st.SpeedChanges)
	assert.Len(t, st.History, 1)
}

func TestRequestRecommendation_AdvisorFailure(t *testing.T) {
	adv := &stubAdvisor{err: errors.New("metrics service down")}
	e, _ := newTestEngine(adv, nil)

	rec, err := e.RequestRecommendation(context.Background(), "u1", 3)
	assert.Nil(t, rec)
	require.Error(t, err)

	st := e.State("u1")
	assert.Empty(t, st.History)
	assert.ErrorIs(t, st.Err, adv.err)

	// A failure leaves no history, so the next request is not throttled.
	adv.err = nil
	adv.sug = &Suggestion{SuggestedSpeed: 4, Confidence: 0.9}
	rec, err = e.RequestRecommendation(context.Background(), "u1", 3)
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.NoError(t, e.State("u1").Err)
}

func TestRequestRecommendation_Validation(t *testing.T) {
	adv := &stubAdvisor{sug: &Suggestion{SuggestedSpeed: 4, Confidence: 0.9}}
	e, _ := newTestEngine(adv, nil)

	rec, err := e.RequestRecommendation(context.Background(), "", 3)
	assert.Nil(t, rec)
	assert.NoError(t, err)
	assert.Equal(t, 0, adv.calls)
}

func TestAccept_InvalidatesNewSpeed(t *testing.T) {
	adv := &stubAdvisor{sug: &Suggestion{SuggestedSpeed: 4, Confidence: 0.9}}
	inv := &stubInvalidator{}
	e, _ := newTestEngine(adv, inv)

	_, err := e.RequestRecommendation(context.Background(), "u1", 3)
	require.NoError(t, err)

	removed, ok := e.Accept("u1", 4)
	require.True(t, ok)
	assert.Equal(t, 3, removed)
	assert.Equal(t, []cache.Filter{{Speed: 4}}, inv.filters)

	st := e.State("u1")
	assert.False(t, st.ShowSuggestion)
	assert.Equal(t, 1, st.SpeedChanges)

	_, ok = e.Accept("u1", 0)
	assert.False(t, ok)
	assert.Len(t, inv.filters, 1)
}
