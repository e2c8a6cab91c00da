package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/session"
)

// SnapshotData captures engine counters at a point in time.
type SnapshotData struct {
	Version int             `json:"version"`
	Session session.Metrics `json:"session"`
	Cache   cache.Stats     `json:"cache"`
}

// Snapshot is a stored SnapshotData. Sequence places it in the global
// event order.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages metrics snapshots.
type SnapshotRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

// Save stores a snapshot and returns the sequence number it was given.
func (r *SnapshotRepo) Save(ctx context.Context, ts time.Time, data SnapshotData) (int64, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot data: %w", err)
	}
	n, err := insert(ctx, r.drv, r.seq, "snapshots", []string{"timestamp", "data"}, []any{ts.UnixMilli(), string(raw)})
	if err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	return n, nil
}

// Latest returns the most recent snapshot, or nil if none exist.
func (r *SnapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("id", "sequence", "timestamp", "data").
		From(entsql.Table("snapshots")).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var (
		s    Snapshot
		ts   int64
		data string
	)
	if err := rows.Scan(&s.ID, &s.Sequence, &ts, &data); err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	s.Timestamp = fromMillis(ts)
	if err := json.Unmarshal([]byte(data), &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &s, nil
}

// Prune deletes all but the keep most recent snapshots.
func (r *SnapshotRepo) Prune(ctx context.Context, keep int) (int64, error) {
	b := entsql.Dialect(dialect.SQLite)
	newest := b.Select("sequence").
		From(entsql.Table("snapshots")).
		OrderBy(entsql.Desc("sequence")).
		Limit(keep)
	query, args := b.Delete("snapshots").
		Where(entsql.NotIn("sequence", newest)).
		Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return n, nil
}
