package pipeline

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/doclens/pkg/doclens/internalerr"
)

// StageFunc executes one stage. It receives a read-only view over the
// outputs of the stage's declared dependencies and must respect the
// context for cancellation.
type StageFunc func(ctx context.Context, in Inputs) (any, error)

// Stage declares one step of the pipeline. DependsOn names stages whose
// outputs this stage consumes; they are validated when the graph is
// built. A best-effort stage runs even when a dependency failed,
// substituting its documented default via Inputs.OutputOr.
type Stage struct {
	Name       string
	DependsOn  []string
	BestEffort bool
	Run        StageFunc
}

// Graph is a validated stage dependency graph in topological order.
type Graph struct {
	stages     map[string]Stage
	dependents map[string][]string
	names      []string // declaration order
	order      []string // topological order
}

// NewGraph validates the stage set: unique names, known dependencies,
// no cycles. Dependency references are checked here, at definition
// time, so a misspelled stage name fails before anything runs.
func NewGraph(stages []Stage) (*Graph, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("pipeline: no stages: %w", internalerr.ErrInvalidInput)
	}

	g := &Graph{
		stages:     make(map[string]Stage, len(stages)),
		dependents: make(map[string][]string),
		names:      make([]string, 0, len(stages)),
	}

	for _, st := range stages {
		if st.Name == "" {
			return nil, fmt.Errorf("pipeline: stage with empty name: %w", internalerr.ErrInvalidInput)
		}
		if st.Run == nil {
			return nil, fmt.Errorf("pipeline: stage %q has no run function: %w", st.Name, internalerr.ErrInvalidInput)
		}
		if _, dup := g.stages[st.Name]; dup {
			return nil, fmt.Errorf("pipeline: duplicate stage %q: %w", st.Name, internalerr.ErrInvalidInput)
		}
		g.stages[st.Name] = st
		g.names = append(g.names, st.Name)
	}

	for _, st := range stages {
		for _, dep := range st.DependsOn {
			if _, ok := g.stages[dep]; !ok {
				return nil, fmt.Errorf("pipeline: stage %q depends on unknown stage %q: %w",
					st.Name, dep, internalerr.ErrUnresolvedDependency)
			}
			if dep == st.Name {
				return nil, fmt.Errorf("pipeline: stage %q depends on itself: %w", st.Name, internalerr.ErrInvalidInput)
			}
			g.dependents[dep] = append(g.dependents[dep], st.Name)
		}
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order
	return g, nil
}

// topoSort runs Kahn's algorithm over the declared edges. Declaration
// order breaks ties so the result is stable.
func (g *Graph) topoSort() ([]string, error) {
	indegree := make(map[string]int, len(g.stages))
	for name, st := range g.stages {
		indegree[name] = len(st.DependsOn)
	}

	var queue []string
	for _, name := range g.names {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(g.stages))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, dep := range g.dependents[name] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(g.stages) {
		return nil, fmt.Errorf("pipeline: dependency cycle detected: %w", internalerr.ErrInvalidInput)
	}
	return order, nil
}

// Stages returns the stage names in topological order.
func (g *Graph) Stages() []string {
	return append([]string(nil), g.order...)
}

// Options bounds one execution.
type Options struct {
	// Timeout caps total wall-clock time. Zero expires immediately;
	// negative disables the budget.
	Timeout time.Duration
}

// Executor runs a Graph, threading each stage's output into its
// dependents. Stages with no dependency edge between them execute
// concurrently; the run state has a single writer (the executor loop
// plus the run mutex for external Cancel).
type Executor struct {
	graph   *Graph
	timeout time.Duration
}

// NewExecutor creates an executor for the graph.
func NewExecutor(g *Graph, opts Options) *Executor {
	return &Executor{graph: g, timeout: opts.Timeout}
}

// runID generation: ULIDs with shared monotonic entropy.
var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Execute runs the graph to completion and returns the finalized Run.
// Stage failures are recorded, never returned: the Run carries the
// per-stage statuses and reasons.
func (e *Executor) Execute(ctx context.Context) *Run {
	run := newRun(newRunID(), e.graph.names)

	if e.timeout >= 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	type completion struct {
		name string
		out  any
		err  error
	}
	done := make(chan completion, len(e.graph.stages))

	remaining := make(map[string]int, len(e.graph.stages))
	depFailed := make(map[string]bool, len(e.graph.stages))
	for name, st := range e.graph.stages {
		remaining[name] = len(st.DependsOn)
	}
	running := 0

	var settle func(name string, failed bool)

	launch := func(name string) {
		st := e.graph.stages[name]
		run.setRunning(name)
		running++
		in := newInputs(run, st.DependsOn)
		go func() {
			out, err := st.Run(ctx, in)
			done <- completion{name: name, out: out, err: err}
		}()
	}

	ready := func(name string) {
		st := e.graph.stages[name]
		if depFailed[name] && !st.BestEffort {
			run.skip(name, ReasonDependency)
			settle(name, true)
			return
		}
		launch(name)
	}

	settle = func(name string, failed bool) {
		for _, dep := range e.graph.dependents[name] {
			if failed {
				depFailed[dep] = true
			}
			remaining[dep]--
			if remaining[dep] == 0 {
				ready(dep)
			}
		}
	}

	for _, name := range e.graph.order {
		if remaining[name] == 0 {
			ready(name)
		}
	}

	for running > 0 {
		select {
		case <-ctx.Done():
			reason := ReasonCancelled
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				reason = ReasonTimeout
			}
			run.failNonTerminal(reason)
			run.finalize()
			return run
		case c := <-done:
			running--
			if c.err != nil {
				run.fail(c.name, failureReason(c.err))
			} else {
				run.succeed(c.name, c.out)
			}
			settle(c.name, c.err != nil)
		}
	}

	run.finalize()
	return run
}

// failureReason maps a stage error to its recorded reason. Context
// errors collapse to the canonical timeout and cancelled reasons so a
// stage that observed the expiry itself reports the same way as one
// the executor reaped.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCancelled
	default:
		return err.Error()
	}
}
