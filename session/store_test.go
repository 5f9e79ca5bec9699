package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmesh/tripmesh/trip"
)

func TestInMemoryStore(t *testing.T) {
	t.Run("CreateGeneratesIDWhenAbsent", func(t *testing.T) {
		store := NewInMemoryStore()

		sess, err := store.Create(trip.PlanRequest{Destination: "Lisbon"})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.ID)
		assert.Equal(t, sess.ID, sess.Request.TripID)
	})

	t.Run("CreateKeepsCallerID", func(t *testing.T) {
		store := NewInMemoryStore()

		sess, err := store.Create(trip.PlanRequest{TripID: "trip-9", Destination: "Lisbon"})
		require.NoError(t, err)
		assert.Equal(t, "trip-9", sess.ID)

		got, err := store.Get("trip-9")
		require.NoError(t, err)
		assert.Equal(t, "Lisbon", got.Request.Destination)
	})

	t.Run("GetUnknownIsNotFound", func(t *testing.T) {
		store := NewInMemoryStore()

		_, err := store.Get("nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("GetReturnsClone", func(t *testing.T) {
		store := NewInMemoryStore()
		sess, err := store.Create(trip.PlanRequest{TripID: "trip-1", Destination: "Lisbon"})
		require.NoError(t, err)
		require.NoError(t, store.SavePlan(sess.ID, &trip.Plan{
			TripID: sess.ID,
			Errors: map[string]string{"dining": "timed out"},
		}))

		got, err := store.Get("trip-1")
		require.NoError(t, err)
		got.Plan.Errors["dining"] = "mutated"
		got.Request.Destination = "Elsewhere"

		again, err := store.Get("trip-1")
		require.NoError(t, err)
		assert.Equal(t, "timed out", again.Plan.Errors["dining"])
		assert.Equal(t, "Lisbon", again.Request.Destination)
	})

	t.Run("SavePlanAndMonitoring", func(t *testing.T) {
		store := NewInMemoryStore()
		sess, err := store.Create(trip.PlanRequest{TripID: "trip-2", Destination: "Kyoto"})
		require.NoError(t, err)

		require.NoError(t, store.SavePlan(sess.ID, &trip.Plan{TripID: sess.ID, Status: trip.StatusComplete}))
		require.NoError(t, store.SetMonitoring(sess.ID, true))

		got, err := store.Get(sess.ID)
		require.NoError(t, err)
		assert.True(t, got.Monitoring)
		assert.Equal(t, trip.StatusComplete, got.Plan.Status)
		assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

		assert.ErrorIs(t, store.SavePlan("nope", &trip.Plan{}), ErrNotFound)
		assert.ErrorIs(t, store.SetMonitoring("nope", true), ErrNotFound)
	})

	t.Run("DeleteAndIDs", func(t *testing.T) {
		store := NewInMemoryStore()
		_, err := store.Create(trip.PlanRequest{TripID: "a", Destination: "X"})
		require.NoError(t, err)
		_, err = store.Create(trip.PlanRequest{TripID: "b", Destination: "Y"})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"a", "b"}, store.IDs())

		require.NoError(t, store.Delete("a"))
		require.NoError(t, store.Delete("a")) // idempotent
		assert.ElementsMatch(t, []string{"b"}, store.IDs())
	})
}
