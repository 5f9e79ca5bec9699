package provider

import (
	"context"
	"sync"
	"time"
)

// MockOutcome scripts one Generate call on a MockProvider.
type MockOutcome struct {
	Content string
	Err     error
	Delay   time.Duration
}

// MockProvider is a lightweight in-memory Provider useful for tests and
// examples. Outcomes are consumed in order; the last one repeats once the
// script is exhausted. The zero value is not usable, construct via
// NewMockProvider.
type MockProvider struct {
	info      Info
	healthErr error

	mu       sync.Mutex
	outcomes []MockOutcome
	calls    int
}

// NewMockProvider constructs a MockProvider with a generous timeout profile.
func NewMockProvider(name string, outcomes ...MockOutcome) *MockProvider {
	return &MockProvider{
		info:     Info{Name: name, Timeout: 5 * time.Second},
		outcomes: outcomes,
	}
}

// SetProbeBeforeCall marks the mock as requiring a pre-call health probe.
func (m *MockProvider) SetProbeBeforeCall(v bool) { m.info.ProbeBeforeCall = v }

// SetHealthErr scripts the Health outcome.
func (m *MockProvider) SetHealthErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthErr = err
}

// Calls returns how many times Generate has been invoked.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Provider; returns the next scripted outcome.
func (m *MockProvider) Generate(ctx context.Context, _ Request) (string, error) {
	m.mu.Lock()
	idx := m.calls
	if idx >= len(m.outcomes) {
		idx = len(m.outcomes) - 1
	}
	m.calls++
	var out MockOutcome
	if idx >= 0 {
		out = m.outcomes[idx]
	}
	m.mu.Unlock()

	if out.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(out.Delay):
		}
	}
	return out.Content, out.Err
}

// Health implements Provider.
func (m *MockProvider) Health(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthErr
}

// Info implements Provider.
func (m *MockProvider) Info() Info { return m.info }
