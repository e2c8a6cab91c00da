package janitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/speedlearn/internal/cache"
	"github.com/abhisek/speedlearn/internal/logger"
	"github.com/abhisek/speedlearn/internal/session"
	"github.com/abhisek/speedlearn/internal/store"
)

type fakeCache struct{ sweeps atomic.Int32 }

func (f *fakeCache) Sweep() int         { f.sweeps.Add(1); return 2 }
func (f *fakeCache) Stats() cache.Stats { return cache.Stats{Hits: 4, Misses: 1} }

type fakeSessions struct{ retries atomic.Int32 }

func (f *fakeSessions) RetryPending(context.Context) int { f.retries.Add(1); return 3 }
func (f *fakeSessions) Metrics() session.Metrics {
	return session.Metrics{TotalSessions: 7, AvgEngagement: 0.6}
}

type fakeSnapshots struct {
	saved   []store.SnapshotData
	keep    int
	saveErr error
}

func (f *fakeSnapshots) Save(_ context.Context, _ time.Time, data store.SnapshotData) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, data)
	return int64(len(f.saved)), nil
}

func (f *fakeSnapshots) Prune(_ context.Context, keep int) (int64, error) {
	f.keep = keep
	return 1, nil
}

func TestRunOnce(t *testing.T) {
	c, s, snaps := &fakeCache{}, &fakeSessions{}, &fakeSnapshots{}
	j := New(c, s, snaps, DefaultConfig(), logger.NewNop())

	r := j.RunOnce()
	assert.Equal(t, 2, r.Swept)
	assert.Equal(t, 3, r.Retried)
	assert.Equal(t, int64(1), r.Snapshot)
	assert.Equal(t, int64(1), r.Pruned)
	assert.NoError(t, r.SnapshotErr)

	require.Len(t, snaps.saved, 1)
	assert.Equal(t, 7, snaps.saved[0].Session.TotalSessions)
	assert.Equal(t, 4, snaps.saved[0].Cache.Hits)
	assert.Equal(t, DefaultConfig().SnapshotKeep, snaps.keep)
}

func TestRunOnce_SnapshotFailureReported(t *testing.T) {
	snaps := &fakeSnapshots{saveErr: errors.New("disk full")}
	j := New(&fakeCache{}, &fakeSessions{}, snaps, DefaultConfig(), logger.NewNop())

	r := j.RunOnce()
	assert.Error(t, r.SnapshotErr)
	assert.Equal(t, 2, r.Swept, "other jobs still run")
}

func TestRunOnce_NoSnapshots(t *testing.T) {
	j := New(&fakeCache{}, &fakeSessions{}, nil, DefaultConfig(), logger.NewNop())
	r := j.RunOnce()
	assert.Zero(t, r.Snapshot)
	assert.NoError(t, r.SnapshotErr)
}

func TestStart_RunsJobsOnSchedule(t *testing.T) {
	c, s := &fakeCache{}, &fakeSessions{}
	cfg := Config{SweepInterval: 10 * time.Millisecond, RetryInterval: 10 * time.Millisecond}
	j := New(c, s, nil, cfg, logger.NewNop())

	require.NoError(t, j.Start())
	defer j.Stop()

	assert.Eventually(t, func() bool {
		return c.sweeps.Load() >= 2 && s.retries.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStart_ZeroIntervalDisablesJob(t *testing.T) {
	c, s := &fakeCache{}, &fakeSessions{}
	cfg := Config{SweepInterval: 10 * time.Millisecond}
	j := New(c, s, nil, cfg, logger.NewNop())

	require.NoError(t, j.Start())
	assert.Eventually(t, func() bool { return c.sweeps.Load() >= 1 }, 2*time.Second, 5*time.Millisecond)
	j.Stop()
	assert.Zero(t, s.retries.Load())
}
