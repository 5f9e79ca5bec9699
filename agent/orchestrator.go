package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/trip"
)

// Run statuses.
const (
	RunComplete = "complete"
	RunPartial  = "partial"
	RunFailed   = "failed"
)

// TaskResult is the terminal outcome of one scheduled worker: either a
// fragment or an error marker, never both.
type TaskResult struct {
	Worker   string
	Fragment trip.Fragment
	Err      error
}

// Succeeded reports whether the worker produced a fragment.
func (t TaskResult) Succeeded() bool { return t.Err == nil && t.Fragment != nil }

// RunResult joins every scheduled worker's terminal outcome. The map always
// contains exactly one entry per scheduled worker.
type RunResult struct {
	Fragments map[string]TaskResult
	Status    string
	Elapsed   time.Duration
}

// FragmentMap extracts the successful fragments keyed by worker name.
func (r RunResult) FragmentMap() map[string]trip.Fragment {
	out := make(map[string]trip.Fragment, len(r.Fragments))
	for name, tr := range r.Fragments {
		if tr.Succeeded() {
			out[name] = tr.Fragment
		}
	}
	return out
}

// FailureMap extracts per-worker failure messages keyed by worker name.
func (r RunResult) FailureMap() map[string]string {
	out := make(map[string]string)
	for name, tr := range r.Fragments {
		if !tr.Succeeded() {
			msg := "no fragment produced"
			if tr.Err != nil {
				msg = tr.Err.Error()
			}
			out[name] = msg
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// OrchestratorOptions configure an Orchestrator.
type OrchestratorOptions struct {
	Logger logging.Logger
}

// Orchestrator drives the two-phase execution graph over the registry.
// It never returns an error past the Run boundary: total failure is an
// all-error result map.
type Orchestrator struct {
	registry *Registry
	gen      Generator
	logger   logging.Logger
}

// NewOrchestrator creates an orchestrator over the given registry and
// generator.
func NewOrchestrator(registry *Registry, gen Generator, optFns ...func(o *OrchestratorOptions)) *Orchestrator {
	opts := OrchestratorOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Orchestrator{registry: registry, gen: gen, logger: opts.Logger}
}

// Run executes all scheduled workers for one plan request. Phase 1 launches
// every independent worker concurrently and waits for all of them; Phase 2
// executes dependent workers sequentially in registration order, each
// observing the fully settled fragment map. Worker failures are isolated:
// they become error markers in the result, nothing more.
func (o *Orchestrator) Run(ctx context.Context, req trip.PlanRequest) RunResult {
	start := time.Now()

	var independent, dependent []Worker
	for _, w := range o.registry.Workers() {
		if c, ok := w.(conditional); ok && !c.Enabled(req) {
			o.logger.Debug("worker disabled by request flags", "worker", w.Name())
			continue
		}
		if len(w.DependsOn()) == 0 {
			independent = append(independent, w)
		} else {
			dependent = append(dependent, w)
		}
	}

	results := make(map[string]TaskResult, len(independent)+len(dependent))

	// Phase 1: fan out, join all. No ordering guarantee between siblings.
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, w := range independent {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			tr := o.execute(ctx, w, Context{Request: req, Generator: o.gen})
			mu.Lock()
			results[w.Name()] = tr
			mu.Unlock()
		}(w)
	}
	wg.Wait()

	// Phase 2: declared order, each worker sees the accumulated fragments.
	for _, w := range dependent {
		if missing := unmetDependencies(w, results); len(missing) > 0 {
			results[w.Name()] = TaskResult{
				Worker: w.Name(),
				Err:    &WorkerError{Worker: w.Name(), Err: fmt.Errorf("unscheduled dependencies: %v", missing)},
			}
			continue
		}
		tc := Context{Request: req, Generator: o.gen, Upstream: snapshotResults(results)}
		results[w.Name()] = o.execute(ctx, w, tc)
	}

	rr := RunResult{Fragments: results, Elapsed: time.Since(start)}
	rr.Status = runStatus(results)
	o.logger.Info("orchestration finished",
		"workers", len(results), "status", rr.Status, "elapsed", rr.Elapsed)
	return rr
}

// execute runs one worker, converting panics and errors into an error-marker
// result so siblings and the join are never disturbed.
func (o *Orchestrator) execute(ctx context.Context, w Worker, tc Context) (tr TaskResult) {
	tr.Worker = w.Name()
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("worker panicked", "worker", w.Name(), "panic", r)
			tr.Fragment = nil
			tr.Err = &WorkerError{Worker: w.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	frag, err := w.Execute(ctx, tc)
	if err != nil {
		o.logger.Warn("worker failed", "worker", w.Name(), "error", err)
		tr.Err = err
		return tr
	}
	tr.Fragment = frag
	return tr
}

// unmetDependencies returns declared dependencies that have no terminal
// result. A failed dependency is terminal and does not block the dependent;
// it simply sees no fragment for it.
func unmetDependencies(w Worker, results map[string]TaskResult) []string {
	var missing []string
	for _, dep := range w.DependsOn() {
		if _, ok := results[dep]; !ok {
			missing = append(missing, dep)
		}
	}
	return missing
}

// snapshotResults copies the settled result map so a dependent worker cannot
// observe later mutations.
func snapshotResults(results map[string]TaskResult) map[string]TaskResult {
	out := make(map[string]TaskResult, len(results))
	for name, tr := range results {
		out[name] = tr
	}
	return out
}

func runStatus(results map[string]TaskResult) string {
	succeeded := 0
	for _, tr := range results {
		if tr.Succeeded() {
			succeeded++
		}
	}
	switch succeeded {
	case len(results):
		if len(results) == 0 {
			return RunFailed
		}
		return RunComplete
	case 0:
		return RunFailed
	default:
		return RunPartial
	}
}
