package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-tracker-api/internal/metrics"
)

// blockingJob counts runs and blocks each run until release is closed.
type blockingJob struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	select {
	case j.started <- struct{}{}:
	default:
	}
	select {
	case <-j.release:
	case <-ctx.Done():
	}
	return nil
}

func TestScheduler_RunsDoNotOverlap(t *testing.T) {
	m := metrics.New()
	s := NewScheduler(NewMemoryLocker(), discardLogger, m)
	job := &blockingJob{started: make(chan struct{}, 1), release: make(chan struct{})}
	s.Register(job, time.Hour)

	first := make(chan error, 1)
	go func() { first <- s.RunNow(context.Background(), "blocking") }()
	<-job.started

	err := s.RunNow(context.Background(), "blocking")
	assert.ErrorIs(t, err, ErrJobRunning)

	close(job.release)
	require.NoError(t, <-first)
	assert.Equal(t, int32(1), job.runs.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobRuns.WithLabelValues("blocking", "skipped")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobRuns.WithLabelValues("blocking", "success")))

	// The lock is released after the run.
	job.release = make(chan struct{})
	close(job.release)
	require.NoError(t, s.RunNow(context.Background(), "blocking"))
	assert.Equal(t, int32(2), job.runs.Load())
}

func TestScheduler_TickerRunsJob(t *testing.T) {
	s := NewScheduler(NewMemoryLocker(), discardLogger, metrics.New())
	job := &blockingJob{started: make(chan struct{}, 10), release: make(chan struct{})}
	close(job.release)
	s.Register(job, 10*time.Millisecond)

	s.Start()
	defer s.Stop()

	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not run by the ticker")
	}
}

func TestScheduler_UnknownJob(t *testing.T) {
	s := NewScheduler(NewMemoryLocker(), discardLogger, metrics.New())
	err := s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestMemoryLocker_ExpiredLockCanBeTaken(t *testing.T) {
	l := NewMemoryLocker()
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	unlock1, ok, err := l.TryLock(context.Background(), "job", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, _ = l.TryLock(context.Background(), "job", time.Minute)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	unlock2, ok, _ := l.TryLock(context.Background(), "job", time.Minute)
	require.True(t, ok)

	// A stale holder does not release the new holder's lock.
	unlock1()
	_, ok, _ = l.TryLock(context.Background(), "job", time.Minute)
	assert.False(t, ok)

	unlock2()
	_, ok, _ = l.TryLock(context.Background(), "job", time.Minute)
	assert.True(t, ok)
}
