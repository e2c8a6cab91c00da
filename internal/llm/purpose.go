package llm

import "context"

type contextKey struct{}

// Purposes label what a request is for in the event log.
const (
	PurposeLessonWriter = "lesson-writer"
	PurposeSpeedAdvisor = "speed-advisor"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, contextKey{}, purpose)
}

// PurposeFrom extracts the purpose label, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(contextKey{}).(string); ok {
		return v
	}
	return "unknown"
}
