package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// QueryOpts filters and pages event queries. Zero values match everything.
type QueryOpts struct {
	UserID   string
	LessonID string
	Limit    int       // max results (0 = unlimited)
	After    int64     // sequence > After
	From     time.Time // timestamp >= From
	To       time.Time // timestamp <= To
}

// predicates turns opts into WHERE clauses. userCols reports whether the
// table has user_id and lesson_id columns.
func (o QueryOpts) predicates(userCols bool) []*entsql.Predicate {
	var ps []*entsql.Predicate
	if userCols && o.UserID != "" {
		ps = append(ps, entsql.EQ("user_id", o.UserID))
	}
	if userCols && o.LessonID != "" {
		ps = append(ps, entsql.EQ("lesson_id", o.LessonID))
	}
	if o.After > 0 {
		ps = append(ps, entsql.GT("sequence", o.After))
	}
	if !o.From.IsZero() {
		ps = append(ps, entsql.GTE("timestamp", o.From.UnixMilli()))
	}
	if !o.To.IsZero() {
		ps = append(ps, entsql.LTE("timestamp", o.To.UnixMilli()))
	}
	return ps
}

// selectEvents builds an ascending-by-sequence query over table.
func selectEvents(table string, cols []string, opts QueryOpts, userCols bool) (string, []any) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(cols...).
		From(entsql.Table(table)).
		OrderBy("sequence")
	if ps := opts.predicates(userCols); len(ps) > 0 {
		sel.Where(entsql.And(ps...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel.Query()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// sequenceCounter hands out one monotonic sequence shared by every event
// table, so telemetry and LLM events interleave in a single order.
// The mutex serializes within the process; RETURNING makes the increment
// atomic in the database.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// insert appends one row with a fresh sequence number.
func insert(ctx context.Context, drv *entsql.Driver, seq *sequenceCounter, table string, cols []string, vals []any) (int64, error) {
	n, err := seq.Next(ctx)
	if err != nil {
		return 0, err
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(table).
		Columns(append([]string{"sequence"}, cols...)...).
		Values(append([]any{n}, vals...)...).
		Query()

	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	return n, nil
}
