package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/provider"
	"github.com/tripmesh/tripmesh/trip"
)

// Generator is the narrow slice of the provider fallback manager a worker
// needs. *provider.Manager satisfies it.
type Generator interface {
	Generate(ctx context.Context, req provider.Request) provider.Result
}

// Context carries a worker's input: the original plan request, the terminal
// results of every upstream worker (Phase 2 only), and the generator for its
// text calls. Upstream always contains an entry for each declared dependency
// by the time a dependent worker runs.
type Context struct {
	Request   trip.PlanRequest
	Upstream  map[string]TaskResult
	Generator Generator
}

// Fragment returns the named upstream fragment if that worker succeeded.
func (c Context) Fragment(name string) (trip.Fragment, bool) {
	tr, ok := c.Upstream[name]
	if !ok || !tr.Succeeded() {
		return nil, false
	}
	return tr.Fragment, true
}

// FragmentText returns the raw text of the named upstream fragment, or empty.
func (c Context) FragmentText(name string) string {
	if f, ok := c.Fragment(name); ok {
		return f.Text()
	}
	return ""
}

// Worker is a specialist task producing one fragment of a composite plan.
// DependsOn returns the names of workers whose fragments must be settled
// before Execute runs; empty means independent (Phase 1).
type Worker interface {
	Name() string
	DependsOn() []string
	Execute(ctx context.Context, tc Context) (trip.Fragment, error)
}

// conditional is implemented by workers that feature flags on the request can
// disable entirely (the worker is then not scheduled at all).
type conditional interface {
	Enabled(req trip.PlanRequest) bool
}

// WorkerError marks a worker execution failure. The orchestrator stores it as
// the worker's result; it never propagates past the run boundary.
type WorkerError struct {
	Worker string
	Err    error
}

// Error implements the error interface.
func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker %s: %v", e.Worker, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *WorkerError) Unwrap() error { return e.Err }

// generate runs one provider call on behalf of a worker and converts an
// exhausted fallback chain into a WorkerError.
func generate(ctx context.Context, tc Context, worker, system, prompt string) (string, error) {
	res := tc.Generator.Generate(ctx, provider.Request{
		Prompt:       prompt,
		SystemPrompt: system,
		MaxTokens:    800,
		Temperature:  0.7,
	})
	if !res.Success {
		msgs := make([]string, 0, len(res.Failures))
		for _, f := range res.Failures {
			msgs = append(msgs, f.Provider+": "+f.Message)
		}
		return "", &WorkerError{Worker: worker, Err: fmt.Errorf("no content available: %s", strings.Join(msgs, "; "))}
	}
	return res.Content, nil
}

// bulletItems extracts list items ("- x", "* x", "1. x") from generated text.
func bulletItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			items = append(items, strings.TrimSpace(line[2:]))
		case len(line) > 2 && line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')'):
			items = append(items, strings.TrimSpace(line[2:]))
		}
	}
	return items
}

// firstParagraph returns the leading non-empty paragraph of generated text.
func firstParagraph(text string) string {
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			return para
		}
	}
	return strings.TrimSpace(text)
}

// clip bounds upstream fragment text included in dependent prompts.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
