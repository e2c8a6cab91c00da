package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/speedlearn/internal/session"
)

// TelemetryRepo records learner interactions. It satisfies
// session.TelemetrySink.
type TelemetryRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var telemetryCols = []string{
	"user_id", "lesson_id", "adaptation_id", "type", "data",
	"engagement_score", "time_spent_seconds", "timestamp",
}

// TrackUserInteraction appends an interaction.
func (r *TelemetryRepo) TrackUserInteraction(ctx context.Context, ix session.Interaction) error {
	data, err := json.Marshal(ix.Data)
	if err != nil {
		return fmt.Errorf("marshal interaction data: %w", err)
	}
	if ix.Data == nil {
		data = []byte("{}")
	}

	var score any
	if ix.EngagementScore != nil {
		score = *ix.EngagementScore
	}

	_, err = insert(ctx, r.drv, r.seq, "telemetry_events", telemetryCols, []any{
		ix.UserID, ix.LessonID, ix.AdaptationID, string(ix.Type), string(data),
		score, ix.TimeSpentSeconds, ix.Timestamp.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("track interaction: %w", err)
	}
	return nil
}

// StoredInteraction is an interaction with its global sequence number.
type StoredInteraction struct {
	Sequence int64
	session.Interaction
}

// QueryInteractions returns interactions in sequence order.
func (r *TelemetryRepo) QueryInteractions(ctx context.Context, opts QueryOpts) ([]StoredInteraction, error) {
	query, args := selectEvents("telemetry_events", append([]string{"sequence"}, telemetryCols...), opts, true)

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var out []StoredInteraction
	for rows.Next() {
		var (
			si    StoredInteraction
			typ   string
			data  string
			score sql.NullFloat64
			ts    int64
		)
		if err := rows.Scan(&si.Sequence, &si.UserID, &si.LessonID, &si.AdaptationID, &typ, &data,
			&score, &si.TimeSpentSeconds, &ts); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		si.Type = session.InteractionType(typ)
		si.Timestamp = fromMillis(ts)
		if score.Valid {
			v := score.Float64
			si.EngagementScore = &v
		}
		if err := json.Unmarshal([]byte(data), &si.Data); err != nil {
			return nil, fmt.Errorf("unmarshal interaction data: %w", err)
		}
		out = append(out, si)
	}
	return out, rows.Err()
}
