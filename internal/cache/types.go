package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/speedlearn/internal/content"
	"github.com/abhisek/speedlearn/internal/speed"
)

// ErrInvalidRequest is returned for requests missing a lesson, user or valid speed.
var ErrInvalidRequest = errors.New("invalid content request")

// ErrNotCached is returned when an operation needs a cached entry that
// does not exist or has gone stale.
var ErrNotCached = errors.New("content not cached")

// Lesson is what a LessonSource returns for a lesson request.
type Lesson struct {
	Source content.Source

	// UIConfig overrides the speed profile's default knobs when set.
	UIConfig *speed.UIConfig

	// TrackingID correlates telemetry with the served variant. Assigned
	// locally when the source leaves it empty.
	TrackingID string
}

// LessonSource fetches raw lesson material, typically from a remote API.
type LessonSource interface {
	GetAdaptiveLesson(ctx context.Context, lessonID, userID string, s speed.Speed) (*Lesson, error)
}

// Entry is one cached adapted-content record.
type Entry struct {
	Key      string
	LessonID string
	UserID   string
	Speed    speed.Speed

	Content              content.Payload
	UIConfig             speed.UIConfig
	DifficultyLevel      int
	PersonalizationLevel int
	GeneratedAt          time.Time
	Effectiveness        *float64
	TrackingID           string
	Adaptations          []content.Adaptation
}

func (e *Entry) clone() *Entry {
	out := *e
	out.Content = e.Content.Clone()
	out.Adaptations = append([]content.Adaptation(nil), e.Adaptations...)
	if e.Effectiveness != nil {
		v := *e.Effectiveness
		out.Effectiveness = &v
	}
	return &out
}

// Result is what RequestContent returns.
type Result struct {
	Entry     *Entry
	FromCache bool
}

// QueueItem is one in-progress generation.
type QueueItem struct {
	Key         string
	LessonID    string
	UserID      string
	Priority    int
	RequestedAt time.Time
}

// Filter selects lesson-cache entries for invalidation. Zero-valued fields
// match anything; an empty filter matches the whole cache.
type Filter struct {
	LessonID string
	UserID   string
	Speed    speed.Speed
}

func (f Filter) matches(e *Entry) bool {
	return (f.LessonID == "" || f.LessonID == e.LessonID) &&
		(f.UserID == "" || f.UserID == e.UserID) &&
		(f.Speed == 0 || f.Speed == e.Speed)
}

// Stats reports coordinator counters.
type Stats struct {
	Hits         int
	Misses       int
	Generations  int
	Failures     int
	Lessons      int
	Personalized int
	Queued       int
}

// GenerationError wraps a failure to fetch or generate content for a key.
type GenerationError struct {
	Key string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate content %s: %v", e.Key, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// LessonKey is the lesson-cache key: lessonID:userID:speed.
func LessonKey(lessonID, userID string, s speed.Speed) string {
	return fmt.Sprintf("%s:%s:%d", lessonID, userID, s)
}

// PersonalizedKey is the AI-content cache key: lessonID:userID.
func PersonalizedKey(lessonID, userID string) string {
	return lessonID + ":" + userID
}
