package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/vocab-api/internal/config"
)

// Maintainer is the cache surface the scheduled tasks operate on.
type Maintainer interface {
	CachePurger
	CacheAuditor
}

// TaskRunner schedules cache maintenance. On every tick it enqueues a fresh
// task, and a WorkerPool executes the queue. A tick that finds the queue full
// is skipped; the next tick tries again.
type TaskRunner struct {
	target  Maintainer
	config  config.MaintenanceConfig
	queue   *TaskQueue
	pool    *WorkerPool
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewTaskRunner creates a runner for target configured by cfg.
func NewTaskRunner(target Maintainer, cfg config.MaintenanceConfig, logger *slog.Logger) *TaskRunner {
	if target == nil {
		panic("maintenance target cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	queue := NewTaskQueue(cfg.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, logger)
	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		target: target,
		config: cfg,
		queue:  queue,
		pool:   pool,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetErrorHandler forwards to the underlying worker pool.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// Submit enqueues a task for immediate execution.
func (r *TaskRunner) Submit(task Task) error {
	return r.queue.Enqueue(task)
}

// Start launches the workers and one scheduler per enabled interval.
func (r *TaskRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	r.pool.Start()

	r.schedule("purge", r.config.PurgeInterval, func() Task {
		return NewPurgeTask(r.target, r.logger)
	})
	r.schedule("audit", r.config.AuditInterval, func() Task {
		return NewAuditTask(r.target, r.config.AuditSampleSize, r.logger)
	})
}

func (r *TaskRunner) schedule(name string, interval time.Duration, newTask func() Task) {
	if interval <= 0 {
		r.logger.Info("scheduled task disabled", "schedule", name)
		return
	}

	r.logger.Info("scheduled task enabled", "schedule", name, "interval", interval.String())
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task := newTask()
				if err := r.queue.Enqueue(task); err != nil {
					if errors.Is(err, ErrQueueClosed) {
						return
					}
					r.logger.Warn("skipping scheduled task",
						"schedule", name,
						"task_type", task.Type(),
						"error", err)
				}
			}
		}
	}()
}

// Stop halts the schedulers, closes the queue and waits for the workers.
func (r *TaskRunner) Stop() {
	r.cancel()
	r.wg.Wait()
	r.queue.Close()
	r.pool.Stop()
}
