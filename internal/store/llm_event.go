package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/speedlearn/internal/llm"
)

// LLMEventRepo records LLM API calls. It satisfies llm.Recorder.
type LLMEventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var llmCols = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms",
	"success", "error_message", "request_body", "response_body", "timestamp",
}

// RecordLLMRequest appends an LLM request event.
func (r *LLMEventRepo) RecordLLMRequest(ctx context.Context, ev llm.Event) error {
	_, err := insert(ctx, r.drv, r.seq, "llm_requests", llmCols, []any{
		ev.Provider, ev.Model, ev.Purpose, ev.InputTokens, ev.OutputTokens, ev.LatencyMs,
		ev.Success, ev.ErrorMessage, ev.RequestBody, ev.ResponseBody, ev.At.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// StoredLLMEvent is an LLM request event with its global sequence number.
type StoredLLMEvent struct {
	Sequence int64
	llm.Event
}

// QueryLLMEvents returns LLM request events in sequence order. UserID and
// LessonID in opts are ignored.
func (r *LLMEventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]StoredLLMEvent, error) {
	query, args := selectEvents("llm_requests", append([]string{"sequence"}, llmCols...), opts, false)
	return r.scan(ctx, query, args)
}

// GetLLMEvent returns the event with the given sequence number, or nil.
func (r *LLMEventRepo) GetLLMEvent(ctx context.Context, seq int64) (*StoredLLMEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(append([]string{"sequence"}, llmCols...)...).
		From(entsql.Table("llm_requests")).
		Where(entsql.EQ("sequence", seq)).
		Query()
	evs, err := r.scan(ctx, query, args)
	if err != nil || len(evs) == 0 {
		return nil, err
	}
	return &evs[0], nil
}

func (r *LLMEventRepo) scan(ctx context.Context, query string, args []any) ([]StoredLLMEvent, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []StoredLLMEvent
	for rows.Next() {
		var (
			ev StoredLLMEvent
			ts int64
		)
		if err := rows.Scan(&ev.Sequence, &ev.Provider, &ev.Model, &ev.Purpose, &ev.InputTokens, &ev.OutputTokens,
			&ev.LatencyMs, &ev.Success, &ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody, &ts); err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		ev.At = fromMillis(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// PurposeUsage aggregates LLM calls for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// UsageByPurpose aggregates recorded LLM calls per purpose, ordered by purpose.
func (r *LLMEventRepo) UsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"purpose",
			entsql.Count("*"),
			"SUM(CASE WHEN success THEN 0 ELSE 1 END)",
			entsql.Sum("input_tokens"),
			entsql.Sum("output_tokens"),
			"CAST(AVG(latency_ms) AS INTEGER)",
		).
		From(entsql.Table("llm_requests")).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
