package propagation

import "errors"

// ErrAlreadyRunning is returned by Worker.Start when called on a worker
// that is already processing.
var ErrAlreadyRunning = errors.New("propagation: worker already running")

// ErrNotRunning is returned by Worker.Stop when called on a worker that
// was never started.
var ErrNotRunning = errors.New("propagation: worker not running")

// ErrUpdateFailed wraps a CostUpdater failure. The worker logs it,
// counts it in WorkerStats.JobsFailed, and leaves the job out of the
// completed set so a later requeue can retry it.
var ErrUpdateFailed = errors.New("propagation: cost update failed")
