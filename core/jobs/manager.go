package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ddi-sync/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Submit when the worker queue has no
	// capacity. Callers should retry later rather than block.
	ErrQueueFull = errors.New("job queue is full")

	// ErrNotFound is returned by Status and Cancel for unknown job ids.
	ErrNotFound = errors.New("job not found")
)

// ViewBusyError is returned by Submit when another job is already active for
// the same target network view. Concurrent writers against one view would
// race on get-then-update, so admission is single-flight per view.
type ViewBusyError struct {
	View  string
	JobID string
}

func (e *ViewBusyError) Error() string {
	return fmt.Sprintf("network view %q is busy: job %s is active", e.View, e.JobID)
}

// Runner is the unit of work submitted to the manager.
type Runner interface {
	// Name labels the job for status output and logs.
	Name() string

	// View is the target network view the job writes to. Used for
	// single-flight admission.
	View() string

	// Run executes the job. Implementations report progress through the
	// callback and should return early when ctx is cancelled. The
	// returned error marks the whole job failed; per-item failures
	// belong in the Outcome instead.
	Run(ctx context.Context, report func(Progress)) (Outcome, error)
}

// Config holds configuration for the job manager.
type Config struct {
	// Workers is the number of concurrent job executors.
	Workers int `mapstructure:"workers" default:"4"`
	// QueueDepth is the number of jobs that may wait for a worker.
	QueueDepth int `mapstructure:"queue_depth" default:"16"`
}

type task struct {
	job    *SyncJob
	runner Runner
}

// Manager runs submitted jobs on a bounded worker pool and tracks their
// state. At most one job per network view is active at a time.
type Manager struct {
	log   *zap.Logger
	store Store // nil when persistence is disabled

	queue    chan *task
	baseCtx  context.Context
	shutdown context.CancelFunc
	wg       sync.WaitGroup

	mu          sync.Mutex
	jobs        map[string]*SyncJob
	cancels     map[string]context.CancelFunc
	activeViews map[string]string // view -> job id
}

// NewManager starts the worker pool and returns the manager. The store may
// be nil; terminal outcomes are then kept in memory only.
func NewManager(cfg Config, store Store, log *zap.Logger) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = 16
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		log:         log,
		store:       store,
		queue:       make(chan *task, depth),
		baseCtx:     ctx,
		shutdown:    cancel,
		jobs:        make(map[string]*SyncJob),
		cancels:     make(map[string]context.CancelFunc),
		activeViews: make(map[string]string),
	}

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	return m
}

// Submit enqueues a job and returns its id. It fails fast with ErrQueueFull
// when no queue capacity is available and with ViewBusyError when another
// job already holds the runner's network view.
func (m *Manager) Submit(runner Runner) (string, error) {
	job := &SyncJob{
		ID:          uuid.NewString(),
		Name:        runner.Name(),
		View:        runner.View(),
		State:       StatePending,
		SubmittedAt: time.Now(),
	}

	m.mu.Lock()
	if holder, busy := m.activeViews[job.View]; busy {
		m.mu.Unlock()
		return "", &ViewBusyError{View: job.View, JobID: holder}
	}
	m.activeViews[job.View] = job.ID
	m.jobs[job.ID] = job
	m.mu.Unlock()

	select {
	case m.queue <- &task{job: job, runner: runner}:
	default:
		m.mu.Lock()
		delete(m.activeViews, job.View)
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		return "", ErrQueueFull
	}

	m.log.Info("job submitted",
		zap.String("job_id", job.ID),
		zap.String("name", job.Name),
		zap.String("view", job.View))
	return job.ID, nil
}

// Status returns a snapshot of the job. Jobs evicted from memory are looked
// up in the store when one is configured.
func (m *Manager) Status(ctx context.Context, id string) (*SyncJob, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if ok {
		snapshot := job.clone()
		m.mu.Unlock()
		return snapshot, nil
	}
	m.mu.Unlock()

	if m.store != nil {
		return m.store.Get(ctx, id)
	}
	return nil, ErrNotFound
}

// Cancel requests cancellation of a pending or running job. The runner
// observes it between items; the job transitions to Failed once it stops.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.State.Terminal() {
		return nil
	}
	if cancel, running := m.cancels[id]; running {
		cancel()
		return nil
	}

	// Still queued: mark failed now, the worker discards it on dequeue
	m.finishLocked(job, Outcome{}, context.Canceled)
	return nil
}

// Close stops accepting work, cancels running jobs and waits for the
// workers to drain.
func (m *Manager) Close() {
	m.shutdown()
	m.mu.Lock()
	for _, cancel := range m.cancels {
		cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.baseCtx.Done():
			return
		case t := <-m.queue:
			m.run(t)
		}
	}
}

func (m *Manager) run(t *task) {
	m.mu.Lock()
	if t.job.State.Terminal() {
		// Cancelled while queued
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(m.baseCtx)
	m.cancels[t.job.ID] = cancel
	t.job.State = StateRunning
	m.mu.Unlock()
	defer cancel()

	log := logger.WithJob(m.log, t.job.ID).With(zap.String("name", t.job.Name))
	log.Info("job started")

	outcome, err := t.runner.Run(ctx, func(p Progress) {
		m.report(t.job.ID, p)
	})

	m.mu.Lock()
	m.finishLocked(t.job, outcome, err)
	m.mu.Unlock()

	if err != nil {
		log.Warn("job failed", zap.Error(err))
	} else {
		log.Info("job finished",
			zap.Int("created", outcome.Created),
			zap.Int("updated", outcome.Updated),
			zap.Int("failed", outcome.Failed))
	}
}

// report applies a progress update. Current is monotone non-decreasing;
// stale updates are dropped.
func (m *Manager) report(id string, p Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok || job.State.Terminal() {
		return
	}
	if p.Current < job.Progress.Current {
		return
	}
	job.Progress = p
}

// finishLocked moves a job to its terminal state, releases the view lock and
// persists the outcome. Callers hold m.mu.
func (m *Manager) finishLocked(job *SyncJob, outcome Outcome, err error) {
	if job.State.Terminal() {
		return
	}

	job.Outcome = outcome
	job.FinishedAt = time.Now()
	if err != nil {
		job.State = StateFailed
		job.Error = err.Error()
	} else {
		job.State = StateSucceeded
	}

	delete(m.cancels, job.ID)
	if m.activeViews[job.View] == job.ID {
		delete(m.activeViews, job.View)
	}

	if m.store != nil {
		snapshot := job.clone()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if saveErr := m.store.Save(ctx, snapshot); saveErr != nil {
				m.log.Warn("failed to persist job outcome",
					zap.String("job_id", snapshot.ID), zap.Error(saveErr))
			}
		}()
	}
}
