package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/session"
)

// Checker performs the external condition checks (weather, transport,
// venues) for one monitored session and returns any detected changes.
type Checker interface {
	Check(ctx context.Context, sess *session.Session) []Update
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, sess *session.Session) []Update

// Check implements Checker.
func (f CheckerFunc) Check(ctx context.Context, sess *session.Session) []Update {
	return f(ctx, sess)
}

// MonitorOptions configure a Monitor.
type MonitorOptions struct {
	// Interval between condition checks for each monitored session.
	Interval time.Duration
	Logger   logging.Logger
}

// Monitor owns one recurring check loop per monitored session. Loops are
// cancelled cooperatively: each tick re-reads the session's monitoring flag
// before doing any work, so a session stopped mid-interval goes quiet within
// one tick.
type Monitor struct {
	store    session.Store
	hub      *Hub
	checker  Checker
	interval time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewMonitor constructs a Monitor over the store and hub. A nil checker
// disables condition checks; the loop then only maintains liveness.
func NewMonitor(store session.Store, hub *Hub, checker Checker, optFns ...func(o *MonitorOptions)) *Monitor {
	opts := MonitorOptions{
		Interval: 30 * time.Second,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Monitor{
		store:    store,
		hub:      hub,
		checker:  checker,
		interval: opts.Interval,
		logger:   opts.Logger,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Start marks the session monitored and launches its check loop. Starting an
// already monitored session is a no-op.
func (m *Monitor) Start(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, running := m.cancels[sessionID]; running {
		return nil
	}
	if err := m.store.SetMonitoring(sessionID, true); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[sessionID] = cancel
	m.wg.Add(1)
	go m.loop(ctx, sessionID)
	m.logger.Info("monitoring started", "session", sessionID)
	return nil
}

// Stop cancels the session's loop and clears its monitoring flag. Stopping
// an unmonitored session is a no-op.
func (m *Monitor) Stop(sessionID string) {
	m.mu.Lock()
	cancel, running := m.cancels[sessionID]
	if running {
		delete(m.cancels, sessionID)
	}
	m.mu.Unlock()

	if !running {
		return
	}
	cancel()
	_ = m.store.SetMonitoring(sessionID, false)
	m.logger.Info("monitoring stopped", "session", sessionID)
}

// Active reports whether the session currently has a running loop.
func (m *Monitor) Active(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, running := m.cancels[sessionID]
	return running
}

// Shutdown cancels every loop and waits for them to exit.
func (m *Monitor) Shutdown() {
	m.mu.Lock()
	for id, cancel := range m.cancels {
		cancel()
		delete(m.cancels, id)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Monitor) loop(ctx context.Context, sessionID string) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		// Liveness before work: the session may have been removed or
		// unmonitored since the last tick.
		sess, err := m.store.Get(sessionID)
		if err != nil || !sess.Monitoring {
			m.mu.Lock()
			if cancel, ok := m.cancels[sessionID]; ok {
				cancel()
				delete(m.cancels, sessionID)
			}
			m.mu.Unlock()
			return
		}

		if m.checker == nil {
			continue
		}
		for _, u := range m.checker.Check(ctx, sess) {
			m.hub.Publish(sessionID, u)
		}
	}
}
