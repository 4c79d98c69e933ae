package httpspec

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// Tally holds the four process-wide counters, each incremented under a
// single mutex (spec.md §4.5, §9: "Do not make the Tally lock-free at the
// cost of lost-update risk; the output is user-visible").
type Tally struct {
	mu      sync.Mutex
	total   int
	pass    int
	fail    int
	invalid int
}

func (t *Tally) IncTotal() {
	t.mu.Lock()
	t.total++
	t.mu.Unlock()
}

func (t *Tally) IncPass() {
	t.mu.Lock()
	t.pass++
	t.mu.Unlock()
}

func (t *Tally) IncFail() {
	t.mu.Lock()
	t.fail++
	t.mu.Unlock()
}

func (t *Tally) IncInvalid() {
	t.mu.Lock()
	t.invalid++
	t.mu.Unlock()
}

// Snapshot reads all four counters. Safe to call without external locking
// once every worker has joined (spec.md §4.5).
func (t *Tally) Snapshot() (total, pass, fail, invalid int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, t.pass, t.fail, t.invalid
}

// Pool is a fixed-size worker pool that schedules one work item per file
// (spec.md §4.5). Grounded on the teacher's concurrency-free ExecuteFile
// loop (client.go), extended here with the bounded fan-out the spec
// requires; each worker is tagged with a uuid correlation ID for its log
// lines, repurposing google/uuid from the teacher's {{$uuid}} system
// variable generator (client.go's generateRequestScopedSystemVariables).
//
// A Pool does not hold a shared *Runner: spec.md §5 requires each worker to
// own its own HTTP client instance, so newRunner is called once per worker
// at startup, giving every goroutine its own *Runner/*Executor/*http.Client.
// Only the Tally and the Runner's ErrorSink (supplied by the caller's
// newRunner closure) are meant to be shared across workers.
type Pool struct {
	size      int
	newRunner func() *Runner
	tally     *Tally
	logger    *slog.Logger
}

// NewPool builds a Pool with size workers (clamped to at least 1). newRunner
// is invoked once per worker, not once per job, so each worker keeps its own
// Runner (and therefore its own Executor/http.Client) for the pool's
// lifetime.
func NewPool(size int, newRunner func() *Runner, tally *Tally, logger *slog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{size: size, newRunner: newRunner, tally: tally, logger: logger}
}

// Run schedules one RunFile call per path across the pool's workers and
// blocks until every path has been processed, returning each outcome in the
// same order as paths (for callers that want per-file results; the Tally
// itself is updated incrementally as workers finish) plus a *multierror.Error
// aggregating every non-pass file's parse/transport/assertion error, for
// callers that want a single end-of-run error view alongside the Tally's
// counts (spec.md §9's multierror aggregation, scaled from per-request to
// per-run).
func (p *Pool) Run(ctx context.Context, paths []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(paths))
	jobs := make(chan int, len(paths))
	for i := range paths {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	var errsMu sync.Mutex
	var errs *multierror.Error
	for w := 0; w < p.size; w++ {
		wg.Add(1)
		workerID := uuid.NewString()
		runner := p.newRunner()
		p.logger.Debug("worker starting", "worker", workerID)
		go func() {
			defer wg.Done()
			p.worker(ctx, workerID, runner, paths, jobs, outcomes, &errsMu, &errs)
			p.logger.Debug("worker exiting", "worker", workerID)
		}()
	}
	wg.Wait()
	return outcomes, errs.ErrorOrNil()
}

func (p *Pool) worker(ctx context.Context, workerID string, runner *Runner, paths []string, jobs <-chan int, outcomes []Outcome, errsMu *sync.Mutex, errs **multierror.Error) {
	for i := range jobs {
		path := paths[i]
		p.logger.Debug("running file", "worker", workerID, "file", path)
		outcome, err := runner.RunFile(ctx, p.tally, path)
		p.logger.Debug("file finished", "worker", workerID, "file", path, "outcome", outcome)
		outcomes[i] = outcome
		if err != nil {
			errsMu.Lock()
			*errs = multierror.Append(*errs, err)
			errsMu.Unlock()
		}
	}
}
