package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/metrics"
)

// ErrJobRunning is returned by RunNow when another run holds the job lock.
var ErrJobRunning = errors.New("job is already running")

// Job run results recorded in metrics
const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultSkipped = "skipped"
)

const lockPrefix = "jobs:"

type scheduledJob struct {
	job      Job
	interval time.Duration
}

// Scheduler runs registered jobs on fixed intervals. Each run holds a lock
// named after the job, so runs of the same job never overlap, even across
// processes sharing a Redis locker.
type Scheduler struct {
	locker  Locker
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	jobs map[string]scheduledJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(locker Locker, logger *slog.Logger, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		locker:  locker,
		logger:  logger,
		metrics: m,
		jobs:    make(map[string]scheduledJob),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Register schedules job every interval. Registering a name twice replaces
// the earlier job.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name()] = scheduledJob{job: job, interval: interval}
}

// Start launches one ticker loop per registered job. The first run happens
// after one interval.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, sj := range s.jobs {
		s.wg.Add(1)
		go s.loop(sj)
		s.logger.Info("scheduled job", slog.String("job", name), slog.Duration("interval", sj.interval))
	}
}

// Stop cancels running jobs and waits for the loops to exit.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// RunNow runs the named job immediately under its lock.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return s.run(ctx, sj)
}

func (s *Scheduler) loop(sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if err := s.run(s.ctx, sj); err != nil && !errors.Is(err, ErrJobRunning) {
				s.logger.Error("scheduled job failed", slog.String("job", sj.job.Name()), slog.Any("error", err))
			}
		}
	}
}

func (s *Scheduler) run(ctx context.Context, sj scheduledJob) error {
	name := sj.job.Name()

	unlock, acquired, err := s.locker.TryLock(ctx, lockPrefix+name, sj.interval)
	if err != nil {
		s.metrics.JobRuns.WithLabelValues(name, resultFailure).Inc()
		return fmt.Errorf("failed to lock job %s: %w", name, err)
	}
	if !acquired {
		s.metrics.JobRuns.WithLabelValues(name, resultSkipped).Inc()
		s.logger.Info("job already running, skipping", slog.String("job", name))
		return ErrJobRunning
	}
	defer unlock()

	start := time.Now()
	if err := sj.job.Run(ctx); err != nil {
		s.metrics.JobRuns.WithLabelValues(name, resultFailure).Inc()
		return err
	}

	s.metrics.JobRuns.WithLabelValues(name, resultSuccess).Inc()
	s.logger.Info("job finished", slog.String("job", name), slog.Duration("took", time.Since(start)))
	return nil
}
