package propagation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coherentnotebook/entropy/internal/logging"
)

var log = logging.GetLogger("propagation")

// DefaultPollInterval is how often a Worker checks the queue for
// pending jobs when none was configured explicitly.
const DefaultPollInterval = 100 * time.Millisecond

// DefaultMaxRetries bounds the number of extra attempts a Worker makes
// on a job whose CostUpdater call fails, before counting it as failed.
const DefaultMaxRetries = 3

// WorkerStats is a point-in-time snapshot of a Worker's counters.
type WorkerStats struct {
	JobsProcessed  uint64
	EntriesUpdated uint64
	JobsSkipped    uint64
	JobsFailed     uint64
}

// Worker drains a Queue on a poll interval, applying each job through a
// CostUpdater. It tracks completed job IDs so a job replayed onto the
// queue (e.g. after a crash recovery) is skipped rather than double
// applied, and retries a failing update with backoff before giving up
// on it.
type Worker struct {
	queue        *Queue
	updater      CostUpdater
	pollInterval time.Duration
	maxRetries   uint64

	completedMu sync.Mutex
	completed   map[uuid.UUID]struct{}

	jobsProcessed  uint64
	entriesUpdated uint64
	jobsSkipped    uint64
	jobsFailed     uint64

	runMu  sync.Mutex
	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewWorker returns a Worker draining queue through updater, using
// DefaultPollInterval and DefaultMaxRetries.
func NewWorker(queue *Queue, updater CostUpdater) *Worker {
	return &Worker{
		queue:        queue,
		updater:      updater,
		pollInterval: DefaultPollInterval,
		maxRetries:   DefaultMaxRetries,
		completed:    make(map[uuid.UUID]struct{}),
	}
}

// WithPollInterval overrides the worker's poll interval and returns the
// worker for chaining.
func (w *Worker) WithPollInterval(d time.Duration) *Worker {
	w.pollInterval = d
	return w
}

// WithMaxRetries overrides the worker's per-job retry budget and returns
// the worker for chaining.
func (w *Worker) WithMaxRetries(n uint64) *Worker {
	w.maxRetries = n
	return w
}

// QueueDepth returns the number of jobs currently pending.
func (w *Worker) QueueDepth() int {
	return w.queue.Len()
}

// Stats returns a snapshot of the worker's processing counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		JobsProcessed:  atomic.LoadUint64(&w.jobsProcessed),
		EntriesUpdated: atomic.LoadUint64(&w.entriesUpdated),
		JobsSkipped:    atomic.LoadUint64(&w.jobsSkipped),
		JobsFailed:     atomic.LoadUint64(&w.jobsFailed),
	}
}

// IsCompleted reports whether jobID has already been applied.
func (w *Worker) IsCompleted(jobID uuid.UUID) bool {
	w.completedMu.Lock()
	defer w.completedMu.Unlock()
	_, ok := w.completed[jobID]
	return ok
}

// Start spawns the worker's background loop. It returns ErrAlreadyRunning
// if the worker is already processing. The loop stops when ctx is
// canceled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()
	if w.group != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return w.run(gctx)
	})

	w.group = g
	w.cancel = cancel
	return nil
}

// Stop signals the worker to shut down and waits for its loop to
// return. It returns ErrNotRunning if the worker was never started.
func (w *Worker) Stop() error {
	w.runMu.Lock()
	g, cancel := w.group, w.cancel
	w.group, w.cancel = nil, nil
	w.runMu.Unlock()

	if g == nil {
		return ErrNotRunning
	}
	cancel()
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (w *Worker) run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.drain(ctx)
		case <-ctx.Done():
			log.Debug("propagation worker shutting down")
			return nil
		}
	}
}

// drain processes every job currently pending, in FIFO order.
func (w *Worker) drain(ctx context.Context) {
	for {
		job, ok := w.queue.ProcessNext()
		if !ok {
			return
		}
		w.processJob(ctx, job)
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) {
	if w.IsCompleted(job.JobID) {
		log.Debug("skipping already-completed propagation job", "job_id", job.JobID)
		atomic.AddUint64(&w.jobsSkipped, 1)
		return
	}

	start := time.Now()
	count, err := w.applyWithRetry(ctx, job)
	if err != nil {
		log.Warn("propagation job failed", "job_id", job.JobID, "error", err)
		atomic.AddUint64(&w.jobsFailed, 1)
		return
	}

	w.completedMu.Lock()
	w.completed[job.JobID] = struct{}{}
	w.completedMu.Unlock()

	atomic.AddUint64(&w.jobsProcessed, 1)
	atomic.AddUint64(&w.entriesUpdated, uint64(count))
	log.Info("processed propagation job", "job_id", job.JobID, "entries_updated", count, "elapsed", time.Since(start))
}

// applyWithRetry calls the updater, retrying transient failures with
// exponential backoff for at most maxRetries retries after the first
// attempt. A final failure is returned wrapped in ErrUpdateFailed.
func (w *Worker) applyWithRetry(ctx context.Context, job Job) (int, error) {
	var count int
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), w.maxRetries), ctx)

	err := backoff.Retry(func() error {
		var err error
		count, err = w.updater.UpdateCumulativeCost(ctx, job.JobID, job.NotebookID, job.AffectedEntryIDs, job.CostDelta)
		return err
	}, policy)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	return count, nil
}

// ProcessJobSync applies a single job synchronously, bypassing the
// polling loop. Intended for tests and for draining the queue
// immediately after a write that needs its propagation visible before
// returning.
func (w *Worker) ProcessJobSync(ctx context.Context, job Job) {
	w.processJob(ctx, job)
}
