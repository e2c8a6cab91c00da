package remote

import (
	"context"

	"github.com/abhisek/speedlearn/internal/session"
)

// NopSink discards telemetry. Used when no store is configured.
type NopSink struct{}

func (NopSink) TrackUserInteraction(context.Context, session.Interaction) error { return nil }
