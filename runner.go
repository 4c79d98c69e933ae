package httpspec

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Outcome is the per-file verdict of the test runner (spec.md §3, §4.4).
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeInvalid Outcome = "invalid"
)

// Runner drives one file through parse → for-each-request(execute →
// evaluate) with first-failure stop (spec.md §4.4). Each pool worker owns
// its own Runner (and therefore its own Executor/http.Client, per spec.md
// §5); a Runner carries no per-file mutable state of its own, so reusing
// one across every job a single worker picks up is safe.
//
// Grounded on the teacher's Client.ExecuteFile loop (client.go), replacing
// variable substitution and multi-error response collection with the
// evaluator's Diagnostic and the §4.4 stop-on-first-failure rule.
type Runner struct {
	executor *Executor
	sink     *ErrorSink
}

// NewRunner builds a Runner that executes requests via executor and
// writes failure lines to sink.
func NewRunner(executor *Executor, sink *ErrorSink) *Runner {
	return &Runner{executor: executor, sink: sink}
}

// RunFile parses path, executes its requests in order with first-failure
// stop, reports every Failure of the stopping request to the error sink,
// and updates tally exactly once for total and once for the outcome
// (spec.md §4.4, §4.5). The returned error is nil for OutcomePass and
// otherwise describes the parse/transport/assertion problem that produced
// the outcome, for callers (the pool) that aggregate per-run errors
// alongside the Tally's counts.
func (r *Runner) RunFile(ctx context.Context, tally *Tally, path string) (Outcome, error) {
	outcome, err := r.runFile(ctx, path)
	tally.IncTotal()
	switch outcome {
	case OutcomePass:
		tally.IncPass()
	case OutcomeFail:
		tally.IncFail()
	default:
		tally.IncInvalid()
	}
	return outcome, err
}

func (r *Runner) runFile(ctx context.Context, path string) (Outcome, error) {
	requests, err := ParseFile(path)
	if err != nil {
		r.sink.WriteLine(fmt.Sprintf("[Invalid] %s: %s", path, err))
		return OutcomeInvalid, fmt.Errorf("%s: %w", path, err)
	}

	for _, req := range requests {
		resp, err := r.executor.Execute(ctx, req)
		if err != nil {
			r.sink.WriteLine(formatTransportFailure(path, req, err))
			return OutcomeInvalid, fmt.Errorf("%s: %w", path, err)
		}

		diag := Check(req, resp)
		if !diag.Empty() {
			r.sink.WriteFailures(diag.Failures)
			name := req.Name
			if name == "" {
				name = req.Method + " " + req.URL
			}
			return OutcomeFail, fmt.Errorf("%s: %s: %w", path, name, diag.Err())
		}
	}
	return OutcomePass, nil
}

func formatTransportFailure(path string, req *Request, err error) string {
	name := req.Name
	if name == "" {
		name = req.Method + " " + req.URL
	}
	return fmt.Sprintf("[Invalid] %s: %s: %s", path, name, err)
}

// ErrorSink is the shared, line-oriented writer for human-readable failure
// reports (spec.md §5: "Implementations MUST avoid torn lines"). Each
// WriteLine/WriteFailures call holds the sink's mutex for the whole write
// so concurrent workers never interleave partial lines.
type ErrorSink struct {
	w  io.Writer
	mu sync.Mutex
}

// NewErrorSink wraps w as a mutex-guarded line sink.
func NewErrorSink(w io.Writer) *ErrorSink {
	return &ErrorSink{w: w}
}

// WriteLine writes one failure line, appending a trailing newline.
func (s *ErrorSink) WriteLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

// WriteFailures renders and writes every Failure of one request's
// Diagnostic, one line each, while holding the sink's mutex, so that one
// request's failures are never split across interleaved writes from
// another worker.
func (s *ErrorSink) WriteFailures(failures []Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range failures {
		fmt.Fprintln(s.w, f.Error())
	}
}
