package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/provider"
	"github.com/tripmesh/tripmesh/trip"
)

// stubWorker is a scriptable worker for orchestrator tests.
type stubWorker struct {
	name    string
	deps    []string
	delay   time.Duration
	err     error
	panicky bool
	execFn  func(tc Context) (trip.Fragment, error)
}

var _ Worker = (*stubWorker)(nil)

func (w *stubWorker) Name() string        { return w.name }
func (w *stubWorker) DependsOn() []string { return w.deps }

func (w *stubWorker) Execute(_ context.Context, tc Context) (trip.Fragment, error) {
	if w.delay > 0 {
		time.Sleep(w.delay)
	}
	if w.panicky {
		panic("stub worker exploded")
	}
	if w.err != nil {
		return nil, w.err
	}
	if w.execFn != nil {
		return w.execFn(tc)
	}
	return trip.TextFragment{Worker: w.name, Raw: w.name + " output"}, nil
}

// stubGenerator answers every call with fixed content.
type stubGenerator struct {
	content string
}

var _ Generator = (*stubGenerator)(nil)

func (g *stubGenerator) Generate(_ context.Context, _ provider.Request) provider.Result {
	return provider.Result{Content: g.content, Provider: "stub", Success: true}
}

func newTestRequest() trip.PlanRequest {
	req := trip.PlanRequest{
		TripID:      "trip-1",
		Destination: "Lisbon",
		Origin:      "Berlin",
	}
	_ = req.Validate()
	return req
}

func registryOf(workers ...Worker) *Registry {
	r := NewRegistry()
	for _, w := range workers {
		r.Register(w)
	}
	return r
}

func TestOrchestratorRun(t *testing.T) {
	t.Run("EveryScheduledWorkerHasOneResult", func(t *testing.T) {
		o := NewOrchestrator(registryOf(
			&stubWorker{name: "a"},
			&stubWorker{name: "b", err: errors.New("upstream down")},
			&stubWorker{name: "c", deps: []string{"a", "b"}},
		), &stubGenerator{})

		rr := o.Run(context.Background(), newTestRequest())

		require.Len(t, rr.Fragments, 3)
		assert.True(t, rr.Fragments["a"].Succeeded())
		assert.False(t, rr.Fragments["b"].Succeeded())
		assert.True(t, rr.Fragments["c"].Succeeded())
		assert.Equal(t, RunPartial, rr.Status)
	})

	t.Run("IndependentWorkersRunConcurrently", func(t *testing.T) {
		const delay = 80 * time.Millisecond
		o := NewOrchestrator(registryOf(
			&stubWorker{name: "a", delay: delay},
			&stubWorker{name: "b", delay: delay},
			&stubWorker{name: "c", delay: delay},
			&stubWorker{name: "d", delay: delay},
		), &stubGenerator{})

		rr := o.Run(context.Background(), newTestRequest())

		assert.Equal(t, RunComplete, rr.Status)
		// Fan-out: total elapsed tracks the slowest sibling, not the sum.
		assert.Less(t, rr.Elapsed, 3*delay)
	})

	t.Run("DependentSeesAllDependencyKeys", func(t *testing.T) {
		var seen Context
		o := NewOrchestrator(registryOf(
			&stubWorker{name: "a"},
			&stubWorker{name: "b", err: errors.New("boom")},
			&stubWorker{name: "c", deps: []string{"a", "b"}, execFn: func(tc Context) (trip.Fragment, error) {
				seen = tc
				return trip.TextFragment{Worker: "c", Raw: "ok"}, nil
			}},
		), &stubGenerator{})

		o.Run(context.Background(), newTestRequest())

		// Failed dependencies are still terminal entries in the upstream map.
		require.Contains(t, seen.Upstream, "a")
		require.Contains(t, seen.Upstream, "b")
		assert.Equal(t, "a output", seen.FragmentText("a"))
		_, ok := seen.Fragment("b")
		assert.False(t, ok)
	})

	t.Run("UnscheduledDependencyBecomesErrorMarker", func(t *testing.T) {
		o := NewOrchestrator(registryOf(
			&stubWorker{name: "a"},
			&stubWorker{name: "c", deps: []string{"a", "ghost"}},
		), &stubGenerator{})

		rr := o.Run(context.Background(), newTestRequest())

		require.Len(t, rr.Fragments, 2)
		tr := rr.Fragments["c"]
		require.Error(t, tr.Err)
		assert.Contains(t, tr.Err.Error(), "unscheduled dependencies")

		var werr *WorkerError
		require.ErrorAs(t, tr.Err, &werr)
		assert.Equal(t, "c", werr.Worker)
	})

	t.Run("PanicIsIsolated", func(t *testing.T) {
		o := NewOrchestrator(registryOf(
			&stubWorker{name: "a", panicky: true},
			&stubWorker{name: "b"},
		), &stubGenerator{})

		rr := o.Run(context.Background(), newTestRequest())

		require.Len(t, rr.Fragments, 2)
		assert.True(t, rr.Fragments["b"].Succeeded())
		require.Error(t, rr.Fragments["a"].Err)
		assert.Contains(t, rr.Fragments["a"].Err.Error(), "panic")
		assert.Equal(t, RunPartial, rr.Status)
	})

	t.Run("AllWorkersFailedIsFailedRun", func(t *testing.T) {
		o := NewOrchestrator(registryOf(
			&stubWorker{name: "a", err: errors.New("x")},
			&stubWorker{name: "b", err: errors.New("y")},
		), &stubGenerator{})

		rr := o.Run(context.Background(), newTestRequest())

		assert.Equal(t, RunFailed, rr.Status)
		assert.Empty(t, rr.FragmentMap())
		assert.Len(t, rr.FailureMap(), 2)
	})
}

func TestOrchestratorConditionalWorkers(t *testing.T) {
	run := func(t *testing.T, includeAudio bool) RunResult {
		t.Helper()

		r := NewRegistry()
		for _, w := range DefaultWorkers() {
			r.Register(w)
		}
		o := NewOrchestrator(r, &stubGenerator{content: "Day one.\n- Stop A\n- Stop B"})

		req := trip.PlanRequest{TripID: "trip-2", Destination: "Kyoto", Origin: "Osaka", IncludeAudioTour: includeAudio}
		require.NoError(t, req.Validate())

		return o.Run(context.Background(), req)
	}

	t.Run("AudioTourScheduledWhenRequested", func(t *testing.T) {
		rr := run(t, true)
		require.Len(t, rr.Fragments, 7)
		assert.True(t, rr.Fragments[trip.WorkerAudioTour].Succeeded())
		assert.Equal(t, RunComplete, rr.Status)
	})

	t.Run("AudioTourSkippedWhenDisabled", func(t *testing.T) {
		rr := run(t, false)
		require.Len(t, rr.Fragments, 6)
		assert.NotContains(t, rr.Fragments, trip.WorkerAudioTour)
		assert.Equal(t, RunComplete, rr.Status)
	})
}

func TestGenerateFailureCarriesProviderMessages(t *testing.T) {
	gen := generatorFunc(func(_ context.Context, _ provider.Request) provider.Result {
		return provider.Result{
			Success: false,
			Failures: []provider.Failure{
				{Provider: "groq", Kind: provider.KindRateLimited, Message: "429 too many requests"},
				{Provider: "ollama", Kind: provider.KindTransport, Message: "connection refused"},
			},
		}
	})

	_, err := generate(context.Background(), Context{Generator: gen}, "dining", "sys", "prompt")

	require.Error(t, err)
	var werr *WorkerError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, "dining", werr.Worker)
	assert.Contains(t, err.Error(), "groq: 429 too many requests")
	assert.Contains(t, err.Error(), "ollama: connection refused")
}

// generatorFunc adapts a function to the Generator interface.
type generatorFunc func(ctx context.Context, req provider.Request) provider.Result

func (f generatorFunc) Generate(ctx context.Context, req provider.Request) provider.Result {
	return f(ctx, req)
}

func TestBulletItems(t *testing.T) {
	text := "Intro line\n- first\n* second\n1. third\n2) fourth\nplain trailing line"
	assert.Equal(t, []string{"first", "second", "third", "fourth"}, bulletItems(text))
}

func TestFirstParagraph(t *testing.T) {
	assert.Equal(t, "Lead paragraph.", firstParagraph("\n\nLead paragraph.\n\nSecond paragraph."))
	assert.Equal(t, "only", firstParagraph("only"))
}

func ExampleRegistry_Names() {
	r := NewRegistry()
	r.Register(DestinationWorker{})
	r.Register(BudgetWorker{})
	fmt.Println(r.Names())
	// Output: [destination budget]
}
