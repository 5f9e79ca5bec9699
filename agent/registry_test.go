package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("PreservesRegistrationOrder", func(t *testing.T) {
		r := NewRegistry()
		for _, w := range DefaultWorkers() {
			r.Register(w)
		}

		assert.Equal(t, []string{
			"destination", "transport", "lodging", "dining",
			"budget", "audio_tour", "safety",
		}, r.Names())
	})

	t.Run("Get", func(t *testing.T) {
		r := NewRegistry()
		r.Register(DestinationWorker{})

		w, ok := r.Get("destination")
		require.True(t, ok)
		assert.Equal(t, "destination", w.Name())

		_, ok = r.Get("weather")
		assert.False(t, ok)
	})

	t.Run("DuplicateRegistrationPanics", func(t *testing.T) {
		r := NewRegistry()
		r.Register(DiningWorker{})

		assert.PanicsWithValue(t, `agent: worker "dining" registered twice`, func() {
			r.Register(DiningWorker{})
		})
	})
}
