package session

import "time"

const (
	engagementFullTime   = 5 * time.Minute
	engagementFullCount  = 10
	timeWeight           = 0.3
	interactionWeight    = 0.4
	completionWeight     = 0.3
	incompleteCompletion = 0.5
)

// Engagement combines time on task, interaction volume and completion
// into a 0-1 score. Time saturates at five minutes and volume at ten
// interactions. A session without a complete interaction earns half the
// completion weight.
func Engagement(elapsed time.Duration, count int, hasComplete bool) float64 {
	timeScore := min(1, float64(elapsed.Milliseconds())/float64(engagementFullTime.Milliseconds()))
	if timeScore < 0 {
		timeScore = 0
	}
	countScore := min(1, float64(count)/engagementFullCount)

	completion := incompleteCompletion
	if hasComplete {
		completion = 1
	}
	return timeWeight*timeScore + interactionWeight*countScore + completionWeight*completion
}
