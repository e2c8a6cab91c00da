package cache

import "time"

// Config holds coordinator settings.
type Config struct {
	// LessonTTL is how long a lesson-cache entry stays fresh.
	LessonTTL time.Duration

	// AIContentTTL is how long a personalized (AI-content) entry stays fresh.
	AIContentTTL time.Duration

	// GenerationTimeout bounds one shared generation, independent of the
	// callers waiting on it.
	GenerationTimeout time.Duration

	// InteractivePriority is the queue priority of a request made by a
	// learner waiting on the page. Prefetches pass their own priority.
	InteractivePriority int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LessonTTL:           time.Hour,
		AIContentTTL:        10 * time.Minute,
		GenerationTimeout:   45 * time.Second,
		InteractivePriority: 10,
	}
}
