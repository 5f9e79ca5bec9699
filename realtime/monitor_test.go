package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/trip"
)

func newMonitoredSession(t *testing.T, store session.Store, id string) {
	t.Helper()
	_, err := store.Create(trip.PlanRequest{TripID: id, Destination: "Lisbon"})
	require.NoError(t, err)
}

func TestMonitorStartStop(t *testing.T) {
	store := session.NewInMemoryStore()
	hub := NewHub()
	newMonitoredSession(t, store, "s1")

	checker := CheckerFunc(func(_ context.Context, sess *session.Session) []Update {
		return []Update{{Kind: "weather", Message: "rain over " + sess.Request.Destination, Severity: SeverityInfo}}
	})
	m := NewMonitor(store, hub, checker, func(o *MonitorOptions) { o.Interval = 5 * time.Millisecond })
	defer m.Shutdown()

	require.NoError(t, m.Start("s1"))
	require.NoError(t, m.Start("s1")) // idempotent
	assert.True(t, m.Active("s1"))

	sess, err := store.Get("s1")
	require.NoError(t, err)
	assert.True(t, sess.Monitoring)

	assert.Eventually(t, func() bool {
		return len(hub.Updates("s1")) > 0
	}, time.Second, 5*time.Millisecond)

	m.Stop("s1")
	m.Stop("s1") // idempotent
	assert.False(t, m.Active("s1"))

	sess, err = store.Get("s1")
	require.NoError(t, err)
	assert.False(t, sess.Monitoring)
}

func TestMonitorStartUnknownSession(t *testing.T) {
	m := NewMonitor(session.NewInMemoryStore(), NewHub(), nil)
	assert.ErrorIs(t, m.Start("ghost"), session.ErrNotFound)
}

func TestMonitorStopsWhenFlagCleared(t *testing.T) {
	store := session.NewInMemoryStore()
	hub := NewHub()
	newMonitoredSession(t, store, "s1")

	m := NewMonitor(store, hub, nil, func(o *MonitorOptions) { o.Interval = 5 * time.Millisecond })
	defer m.Shutdown()
	require.NoError(t, m.Start("s1"))

	// Clearing the flag out of band stops the loop within one tick.
	require.NoError(t, store.SetMonitoring("s1", false))
	assert.Eventually(t, func() bool {
		return !m.Active("s1")
	}, time.Second, 5*time.Millisecond)
}

func TestMonitorStopsWhenSessionDeleted(t *testing.T) {
	store := session.NewInMemoryStore()
	newMonitoredSession(t, store, "s1")

	m := NewMonitor(store, NewHub(), nil, func(o *MonitorOptions) { o.Interval = 5 * time.Millisecond })
	defer m.Shutdown()
	require.NoError(t, m.Start("s1"))

	require.NoError(t, store.Delete("s1"))
	assert.Eventually(t, func() bool {
		return !m.Active("s1")
	}, time.Second, 5*time.Millisecond)
}
