// Package janitor runs periodic housekeeping: sweeping stale cache
// entries, redelivering pending telemetry and snapshotting metrics.
package janitor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/store"
)

// Cache is the part of *cache.Coordinator the janitor needs.
type Cache interface {
	Sweep() int
	Stats() cache.Stats
}

// Sessions is the part of *session.Manager the janitor needs.
type Sessions interface {
	RetryPending(ctx context.Context) int
	Metrics() session.Metrics
}

// Snapshots persists metrics snapshots. Satisfied by *store.SnapshotRepo.
type Snapshots interface {
	Save(ctx context.Context, ts time.Time, data store.SnapshotData) (int64, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// Config holds job intervals. A zero interval disables the job.
type Config struct {
	SweepInterval    time.Duration
	RetryInterval    time.Duration
	SnapshotInterval time.Duration

	// SnapshotKeep is how many snapshots survive each prune.
	SnapshotKeep int

	// JobTimeout bounds one telemetry retry or snapshot run.
	JobTimeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval:    5 * time.Minute,
		RetryInterval:    time.Minute,
		SnapshotInterval: 15 * time.Minute,
		SnapshotKeep:     96,
		JobTimeout:       30 * time.Second,
	}
}

// Report summarises one pass of every job.
type Report struct {
	Swept       int
	Retried     int
	Snapshot    int64
	Pruned      int64
	SnapshotErr error
}

type job struct {
	name     string
	interval time.Duration
	fn       func()
}

// Janitor schedules housekeeping jobs on a gocron scheduler.
type Janitor struct {
	sched     *gocron.Scheduler
	cfg       Config
	log       *logger.Logger
	cache     Cache
	sessions  Sessions
	snapshots Snapshots
	now       func() time.Time
}

// New creates a Janitor. snapshots may be nil to disable snapshotting.
func New(c Cache, s Sessions, snapshots Snapshots, cfg Config, log *logger.Logger) *Janitor {
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	return &Janitor{
		sched:     sched,
		cfg:       cfg,
		log:       log.With("component", "janitor"),
		cache:     c,
		sessions:  s,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// Start registers the enabled jobs and runs the scheduler in the
// background. Each job also runs once immediately.
func (j *Janitor) Start() error {
	jobs := []job{
		{"sweep", j.cfg.SweepInterval, func() { j.sweep() }},
		{"retry-telemetry", j.cfg.RetryInterval, func() { j.retry() }},
	}
	if j.snapshots != nil {
		jobs = append(jobs, job{"snapshot", j.cfg.SnapshotInterval, func() { j.snapshot() }})
	}

	for _, jb := range jobs {
		if jb.interval <= 0 {
			continue
		}
		if _, err := j.sched.Every(jb.interval).Tag(jb.name).Do(jb.fn); err != nil {
			return fmt.Errorf("schedule %s: %w", jb.name, err)
		}
	}
	j.sched.StartAsync()
	return nil
}

// Stop halts the scheduler and waits for running jobs.
func (j *Janitor) Stop() {
	j.sched.Stop()
}

// RunOnce runs every job synchronously.
func (j *Janitor) RunOnce() Report {
	r := Report{Swept: j.sweep(), Retried: j.retry()}
	if j.snapshots != nil {
		r.Snapshot, r.Pruned, r.SnapshotErr = j.snapshot()
	}
	return r
}

func (j *Janitor) sweep() int {
	n := j.cache.Sweep()
	if n > 0 {
		j.log.Debug("swept stale cache entries", "count", n)
	}
	return n
}

func (j *Janitor) retry() int {
	ctx, cancel := j.jobContext()
	defer cancel()
	n := j.sessions.RetryPending(ctx)
	if n > 0 {
		j.log.Info("redelivered pending telemetry", "count", n)
	}
	return n
}

func (j *Janitor) snapshot() (int64, int64, error) {
	ctx, cancel := j.jobContext()
	defer cancel()

	seq, err := j.snapshots.Save(ctx, j.now(), store.SnapshotData{
		Version: 1,
		Session: j.sessions.Metrics(),
		Cache:   j.cache.Stats(),
	})
	if err != nil {
		j.log.Warn("metrics snapshot failed", "error", err)
		return 0, 0, err
	}
	pruned, err := j.snapshots.Prune(ctx, j.cfg.SnapshotKeep)
	if err != nil {
		j.log.Warn("snapshot prune failed", "error", err)
		return seq, 0, err
	}
	return seq, pruned, nil
}

func (j *Janitor) jobContext() (context.Context, context.CancelFunc) {
	if j.cfg.JobTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), j.cfg.JobTimeout)
}
