package notifications

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/metrics"
)

// DispatcherConfig tunes the worker pool and retry policy.
type DispatcherConfig struct {
	Workers        int
	MaxAttempts    int
	RetryBackoff   time.Duration
	EnqueueTimeout time.Duration
}

// Dispatcher moves intents from a Queue to the registered handlers using a
// fixed pool of workers. Failed intents are retried with exponential
// backoff and dead-lettered after the last attempt.
type Dispatcher struct {
	queue   Queue
	cfg     DispatcherConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	handlers map[Action]IntentHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDispatcher(queue Queue, cfg DispatcherConfig, logger *slog.Logger, m *metrics.Metrics) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:    queue,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		handlers: make(map[Action]IntentHandler),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Register routes intents with the given action to h.
func (d *Dispatcher) Register(action Action, h IntentHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

func (d *Dispatcher) handler(action Action) (IntentHandler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[action]
	return h, ok
}

// Notify enqueues an intent for the task. Enqueue failures are logged and
// counted, never returned, so request handling is not affected.
func (d *Dispatcher) Notify(taskID uint64, action Action) {
	intent := NewIntent(taskID, action)

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.EnqueueTimeout)
	defer cancel()

	if err := d.queue.Enqueue(ctx, intent); err != nil {
		d.metrics.QueueRejections.Inc()
		d.logger.Warn("failed to enqueue notification",
			slog.String("intent_id", intent.ID.String()),
			slog.Uint64("task_id", taskID),
			slog.String("action", string(action)),
			slog.Any("error", err),
		)
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i + 1)
	}
	d.logger.Info("notification dispatcher started", slog.Int("workers", d.cfg.Workers))
}

// Stop cancels the workers and pending retries, then waits for in-flight
// intents to finish.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.wg.Wait()
	if err := d.queue.Close(); err != nil {
		d.logger.Warn("failed to close notification queue", slog.Any("error", err))
	}
	d.logger.Info("notification dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for {
		intent, err := d.queue.Dequeue(d.ctx)
		if err != nil {
			if d.ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return
			}
			d.logger.Error("failed to dequeue notification", slog.Int("worker", id), slog.Any("error", err))
			select {
			case <-d.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		d.process(intent)
	}
}

func (d *Dispatcher) process(intent Intent) {
	logger := d.logger.With(
		slog.String("intent_id", intent.ID.String()),
		slog.Uint64("task_id", intent.TaskID),
		slog.String("action", string(intent.Action)),
	)

	h, ok := d.handler(intent.Action)
	if !ok {
		logger.Error("no handler registered for notification")
		d.deadLetter(intent, logger)
		return
	}

	err := h.Handle(d.ctx, intent)
	if err == nil {
		return
	}

	intent.Attempt++
	if intent.Attempt >= d.cfg.MaxAttempts {
		logger.Error("notification failed, giving up",
			slog.Int("attempts", intent.Attempt),
			slog.Any("error", err),
		)
		d.deadLetter(intent, logger)
		return
	}

	delay := d.cfg.RetryBackoff << (intent.Attempt - 1)
	logger.Warn("notification failed, retrying",
		slog.Int("attempt", intent.Attempt),
		slog.Duration("delay", delay),
		slog.Any("error", err),
	)
	d.retryAfter(intent, delay, logger)
}

func (d *Dispatcher) retryAfter(intent Intent, delay time.Duration, logger *slog.Logger) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-d.ctx.Done():
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(d.ctx, d.cfg.EnqueueTimeout)
		defer cancel()
		if err := d.queue.Enqueue(ctx, intent); err != nil {
			logger.Error("failed to requeue notification", slog.Any("error", err))
			d.deadLetter(intent, logger)
		}
	}()
}

func (d *Dispatcher) deadLetter(intent Intent, logger *slog.Logger) {
	d.metrics.NotificationsDeadLettered.Inc()

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.EnqueueTimeout)
	defer cancel()
	if err := d.queue.DeadLetter(ctx, intent); err != nil {
		logger.Error("failed to dead-letter notification", slog.Any("error", err))
	}
}
