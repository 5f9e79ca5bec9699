package provider

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/tripmesh/tripmesh/logging"
)

// Options configure the fallback Manager.
type Options struct {
	// RetryBudget is the number of in-place retries for transient failures
	// (timeout, transport) on the same provider before moving on.
	RetryBudget int
	// InitialBackoff seeds the exponential backoff between retries.
	InitialBackoff time.Duration
	// ProbeTimeout bounds pre-call health probes for providers that request one.
	ProbeTimeout time.Duration
	// RatePerSecond applies client-side pacing per provider so a recovering
	// backend is not hammered. Zero disables pacing.
	RatePerSecond float64
	// Logger receives per-attempt diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Manager tries a prioritized, stickily-reordered list of providers for one
// request, classifying and absorbing each provider's failure. Generate fails
// only by returning Result{Success: false}; it never returns an error.
//
// The sticky pointer and last-known-good timestamps are process-wide mutable
// state owned by the Manager instance and guarded by its mutex; tests inject
// a fresh instance per case. Transient unavailability (rate-limited, blocked,
// failed probe) is scoped to a single call chain and never persisted past it.
type Manager struct {
	mu        sync.Mutex
	providers []Provider // fixed priority order
	sticky    string     // last successful provider, tried first
	lastGood  map[string]time.Time
	limiters  map[string]*rate.Limiter
	opts      Options
}

// NewManager creates a Manager over providers in fixed priority order.
func NewManager(providers []Provider, optFns ...func(o *Options)) *Manager {
	opts := Options{
		RetryBudget:    2,
		InitialBackoff: 250 * time.Millisecond,
		ProbeTimeout:   3 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	limiters := make(map[string]*rate.Limiter, len(providers))
	if opts.RatePerSecond > 0 {
		for _, p := range providers {
			limiters[p.Info().Name] = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
		}
	}

	return &Manager{
		providers: providers,
		lastGood:  make(map[string]time.Time, len(providers)),
		limiters:  limiters,
		opts:      opts,
	}
}

// Generate tries each provider in sticky-then-priority order until one
// succeeds. All failures are folded into the returned Result in attempt
// order; an exhausted chain yields Success=false and empty content, which
// callers must treat as "no content available", not a crash.
func (m *Manager) Generate(ctx context.Context, req Request) Result {
	var failures []Failure
	unavailable := map[string]bool{} // call-scoped, never persisted

	for _, p := range m.order() {
		info := p.Info()
		if unavailable[info.Name] {
			continue
		}

		if info.ProbeBeforeCall {
			if err := m.probe(ctx, p); err != nil {
				m.opts.Logger.Warn("provider health probe failed", "provider", info.Name, "error", err)
				unavailable[info.Name] = true
				failures = append(failures, Failure{Provider: info.Name, Kind: KindTransport, Message: "health probe failed: " + err.Error()})
				continue
			}
		}

		m.opts.Logger.Debug("trying provider", "provider", info.Name)
		content, err := m.attempt(ctx, p, req)
		if err == nil && content != "" {
			m.recordSuccess(info.Name)
			m.opts.Logger.Info("generation succeeded", "provider", info.Name, "chars", len(content))
			return Result{Content: content, Provider: info.Name, Success: true, Failures: failures}
		}

		kind := KindMalformed
		msg := "empty response"
		if err != nil {
			kind = Classify(err)
			msg = err.Error()
		}
		m.opts.Logger.Warn("provider failed", "provider", info.Name, "kind", kind.String(), "error", msg)
		failures = append(failures, Failure{Provider: info.Name, Kind: kind, Message: msg})
		if kind == KindRateLimited || kind == KindBlocked {
			unavailable[info.Name] = true
		}
	}

	m.opts.Logger.Error("all providers exhausted", "attempts", len(failures))
	return Result{Success: false, Failures: failures}
}

// attempt runs one provider under its timeout profile, retrying transient
// failures with exponential backoff up to the retry budget. Non-transient
// failures abort immediately.
func (m *Manager) attempt(ctx context.Context, p Provider, req Request) (string, error) {
	info := p.Info()

	if lim := m.limiters[info.Name]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return "", WrapError(KindTransport, "rate limiter wait", err)
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.opts.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(m.opts.RetryBudget)), ctx)

	var content string
	op := func() error {
		callCtx, cancel := context.WithTimeout(ctx, info.Timeout)
		defer cancel()
		out, err := p.Generate(callCtx, req)
		if err != nil {
			if Classify(err).Transient() {
				return err
			}
			return backoff.Permanent(err)
		}
		content = out
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return content, nil
}

func (m *Manager) probe(ctx context.Context, p Provider) error {
	probeCtx, cancel := context.WithTimeout(ctx, m.opts.ProbeTimeout)
	defer cancel()
	return p.Health(probeCtx)
}

// order returns providers with the sticky last-successful one first (if still
// in the pool) followed by the rest in fixed priority order.
func (m *Manager) order() []Provider {
	m.mu.Lock()
	sticky := m.sticky
	m.mu.Unlock()

	if sticky == "" {
		return m.providers
	}
	ordered := make([]Provider, 0, len(m.providers))
	var rest []Provider
	for _, p := range m.providers {
		if p.Info().Name == sticky {
			ordered = append(ordered, p)
			continue
		}
		rest = append(rest, p)
	}
	return append(ordered, rest...)
}

func (m *Manager) recordSuccess(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sticky = name
	m.lastGood[name] = time.Now()
}

// LastUsed returns the name of the most recently successful provider, or
// empty if no call has succeeded yet.
func (m *Manager) LastUsed() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sticky
}

// Status describes one provider's current health.
type Status struct {
	Available bool      `json:"available"`
	LastGood  time.Time `json:"last_good,omitempty"`
}

// ProbeAll health-checks every provider concurrently and returns a snapshot
// keyed by provider name. Providers marked unavailable here are still retried
// on subsequent Generate calls; unavailability is never permanent within a
// process lifetime.
func (m *Manager) ProbeAll(ctx context.Context) map[string]Status {
	var wg sync.WaitGroup
	var mu sync.Mutex
	statuses := make(map[string]Status, len(m.providers))

	for _, p := range m.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			err := m.probe(ctx, p)
			m.mu.Lock()
			lastGood := m.lastGood[p.Info().Name]
			m.mu.Unlock()
			mu.Lock()
			statuses[p.Info().Name] = Status{Available: err == nil, LastGood: lastGood}
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return statuses
}
