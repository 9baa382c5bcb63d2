package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/doclens/pkg/doclens/internalerr"
)

// StageStatus is the lifecycle state of one pipeline stage.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageRunning   StageStatus = "running"
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// terminal reports whether a stage status is final.
func (s StageStatus) terminal() bool {
	return s == StageSucceeded || s == StageFailed || s == StageSkipped
}

// RunStatus is the aggregate outcome of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// Failure reasons recorded on StageResults.
const (
	ReasonTimeout    = "timeout"
	ReasonCancelled  = "cancelled"
	ReasonDependency = "dependency failed"
)

// StageResult is the output of one stage: its status, its produced
// value, an optional failure reason, and elapsed wall time.
type StageResult struct {
	Stage   string
	Status  StageStatus
	Output  any
	Reason  string
	Elapsed time.Duration
}

// Run aggregates all StageResults for one document. The executor is the
// sole writer; every mutation goes through the run mutex so concurrent
// stage completions and Cancel calls serialize.
type Run struct {
	id string

	mu        sync.Mutex
	results   map[string]*StageResult
	started   map[string]time.Time
	order     []string
	status    RunStatus
	startedAt time.Time
	elapsed   time.Duration
	finalized bool
	timedOut  bool
	cancelled bool
}

func newRun(id string, stageNames []string) *Run {
	r := &Run{
		id:        id,
		results:   make(map[string]*StageResult, len(stageNames)),
		started:   make(map[string]time.Time, len(stageNames)),
		order:     append([]string(nil), stageNames...),
		status:    RunRunning,
		startedAt: time.Now(),
	}
	for _, name := range stageNames {
		r.results[name] = &StageResult{Stage: name, Status: StagePending}
	}
	return r
}

// ID returns the run's ULID.
func (r *Run) ID() string { return r.id }

// Status returns the aggregate run status.
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Elapsed returns total wall time once the run is finalized.
func (r *Run) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.elapsed
}

// StartedAt returns the run start time.
func (r *Run) StartedAt() time.Time { return r.startedAt }

// Finalized reports whether the run reached its immutable final state.
func (r *Run) Finalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

// Err reports why the run was cut short: ErrTimeout after the budget
// expired, ErrCancelled after cancellation, nil for a run that ran to
// completion (even with failed stages).
func (r *Run) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.timedOut:
		return internalerr.ErrTimeout
	case r.cancelled:
		return internalerr.ErrCancelled
	}
	return nil
}

func (r *Run) noteReasonLocked(reason string) {
	switch reason {
	case ReasonTimeout:
		r.timedOut = true
	case ReasonCancelled:
		r.cancelled = true
	}
}

// Result returns a copy of one stage's result.
func (r *Run) Result(stage string) (StageResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[stage]
	if !ok {
		return StageResult{}, false
	}
	return *res, true
}

// Results returns copies of all stage results in declaration order.
func (r *Run) Results() []StageResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]StageResult, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.results[name])
	}
	return out
}

// Cancel marks all non-terminal stages failed(cancelled) and finalizes
// the run. Cancelling an already-finalized run is a no-op.
func (r *Run) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	r.failNonTerminalLocked(ReasonCancelled)
	r.finalizeLocked()
}

func (r *Run) setRunning(stage string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.results[stage]; ok && res.Status == StagePending {
		res.Status = StageRunning
		r.started[stage] = time.Now()
	}
}

func (r *Run) succeed(stage string, output any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[stage]
	if !ok || res.Status.terminal() {
		return
	}
	res.Status = StageSucceeded
	res.Output = output
	res.Elapsed = r.sinceStartLocked(stage)
}

func (r *Run) fail(stage, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[stage]
	if !ok || res.Status.terminal() {
		return
	}
	r.noteReasonLocked(reason)
	res.Status = StageFailed
	res.Reason = reason
	res.Elapsed = r.sinceStartLocked(stage)
}

func (r *Run) skip(stage, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[stage]
	if !ok || res.Status.terminal() {
		return
	}
	res.Status = StageSkipped
	res.Reason = reason
}

// failNonTerminal transitions every pending/running stage to failed
// with the given reason. Used for timeout and cancellation.
func (r *Run) failNonTerminal(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNonTerminalLocked(reason)
}

func (r *Run) failNonTerminalLocked(reason string) {
	r.noteReasonLocked(reason)
	for _, res := range r.results {
		if res.Status.terminal() {
			continue
		}
		res.Status = StageFailed
		res.Reason = reason
		res.Elapsed = r.sinceStartLocked(res.Stage)
	}
}

func (r *Run) finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizeLocked()
}

func (r *Run) finalizeLocked() {
	if r.finalized {
		return
	}
	succeeded, total := 0, len(r.order)
	for _, res := range r.results {
		if res.Status == StageSucceeded {
			succeeded++
		}
	}
	switch {
	case succeeded == total:
		r.status = RunSucceeded
	case r.timedOut:
		r.status = RunPartial
	case succeeded > 0:
		r.status = RunPartial
	default:
		r.status = RunFailed
	}
	r.elapsed = time.Since(r.startedAt)
	r.finalized = true
}

func (r *Run) sinceStartLocked(stage string) time.Duration {
	if started, ok := r.started[stage]; ok {
		return time.Since(started)
	}
	return 0
}

// output returns a stage's output and status for dependency resolution.
func (r *Run) output(stage string) (any, StageStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[stage]
	if !ok {
		return nil, "", false
	}
	return res.Output, res.Status, true
}

// Inputs is the read-only view a stage receives over its declared
// dependencies. Access to undeclared or unfinished stages fails with
// ErrUnresolvedDependency.
type Inputs struct {
	run      *Run
	declared map[string]struct{}
}

func newInputs(run *Run, dependsOn []string) Inputs {
	declared := make(map[string]struct{}, len(dependsOn))
	for _, dep := range dependsOn {
		declared[dep] = struct{}{}
	}
	return Inputs{run: run, declared: declared}
}

// Output returns the named dependency's output, or an error when the
// stage was not declared as a dependency or did not succeed.
func (in Inputs) Output(stage string) (any, error) {
	if _, ok := in.declared[stage]; !ok {
		return nil, fmt.Errorf("stage %q not declared as dependency: %w",
			stage, internalerr.ErrUnresolvedDependency)
	}
	out, status, ok := in.run.output(stage)
	if !ok || status != StageSucceeded {
		return nil, fmt.Errorf("dependency %q finished %s: %w",
			stage, status, internalerr.ErrUnresolvedDependency)
	}
	return out, nil
}

// OutputOr returns the dependency's output, or def when it is
// unavailable. Best-effort stages use this to substitute their
// documented defaults.
func (in Inputs) OutputOr(stage string, def any) any {
	out, err := in.Output(stage)
	if err != nil {
		return def
	}
	return out
}
