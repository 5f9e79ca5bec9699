package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullFragmentMap(withAudio bool) map[string]Fragment {
	m := map[string]Fragment{
		WorkerDestination: DestinationFragment{Summary: "Lisbon in three days", Highlights: []string{"Alfama", "Belém"}, Raw: "Lisbon in three days"},
		WorkerTransport:   TransportFragment{Options: []string{"Metro"}, Raw: "- Metro"},
		WorkerLodging:     LodgingFragment{Options: []string{"Baixa hotel"}, Raw: "- Baixa hotel"},
		WorkerDining:      DiningFragment{Recommendations: []string{"Tasca do Chico"}, Raw: "- Tasca do Chico"},
		WorkerBudget:      BudgetFragment{Breakdown: "About 900 EUR total", Raw: "About 900 EUR total"},
		WorkerSafety:      SafetyFragment{Advisories: []string{"Watch for pickpockets"}, Raw: "- Watch for pickpockets"},
	}
	if withAudio {
		m[WorkerAudioTour] = AudioTourFragment{Segments: []string{"Stop one"}, Raw: "Stop one"}
	}
	return m
}

func TestAssemble(t *testing.T) {
	req := PlanRequest{TripID: "trip-1", Destination: "Lisbon", DurationDays: 3}
	require.NoError(t, req.Validate())

	t.Run("CompletePlan", func(t *testing.T) {
		plan := Assemble(req, fullFragmentMap(false), nil)

		assert.Equal(t, StatusComplete, plan.Status)
		assert.Equal(t, "Lisbon in three days", plan.Summary)
		assert.Equal(t, []string{"Alfama", "Belém"}, plan.Destination.Items)
		assert.False(t, plan.Dining.Fallback)
		// Audio was not requested; its section still renders.
		assert.True(t, plan.AudioTour.Fallback)
		assert.Empty(t, plan.Errors)
	})

	t.Run("DegradedPlanKeepsFullShape", func(t *testing.T) {
		fragments := fullFragmentMap(false)
		delete(fragments, WorkerDining)
		failures := map[string]string{WorkerDining: "worker dining: no content available"}

		plan := Assemble(req, fragments, failures)

		assert.Equal(t, StatusDegraded, plan.Status)
		assert.True(t, plan.Dining.Fallback)
		assert.Contains(t, plan.Dining.Content, "No dining information")
		assert.False(t, plan.Transport.Fallback)
		assert.Equal(t, failures, plan.Errors)
	})

	t.Run("TotalFailureStillRendersEverySection", func(t *testing.T) {
		plan := Assemble(req, nil, map[string]string{WorkerDestination: "all providers exhausted"})

		assert.Equal(t, StatusFailed, plan.Status)
		for _, sec := range []Section{
			plan.Destination, plan.Transport, plan.Lodging,
			plan.Dining, plan.Budget, plan.Safety,
		} {
			assert.True(t, sec.Fallback)
			assert.NotEmpty(t, sec.Content)
		}
		assert.Equal(t, "3-day trip to Lisbon", plan.Summary)
	})

	t.Run("AudioTourCountsWhenRequested", func(t *testing.T) {
		audioReq := req
		audioReq.IncludeAudioTour = true

		// All six regulars present but no audio fragment: degraded.
		plan := Assemble(audioReq, fullFragmentMap(false), nil)
		assert.Equal(t, StatusDegraded, plan.Status)
		assert.True(t, plan.AudioTour.Fallback)

		plan = Assemble(audioReq, fullFragmentMap(true), nil)
		assert.Equal(t, StatusComplete, plan.Status)
		assert.Equal(t, []string{"Stop one"}, plan.AudioTour.Items)
	})
}

func TestValidate(t *testing.T) {
	t.Run("RequiresDestination", func(t *testing.T) {
		req := PlanRequest{TripID: "t"}
		assert.ErrorIs(t, req.Validate(), ErrMissingDestination)
	})

	t.Run("NormalizesDefaults", func(t *testing.T) {
		req := PlanRequest{Destination: "Lisbon"}
		require.NoError(t, req.Validate())
		assert.Equal(t, 1, req.DurationDays)
		assert.Equal(t, 1, req.Travelers)
		assert.Equal(t, "USD", req.Currency)
	})
}

func TestReplanEventDescribe(t *testing.T) {
	e := ReplanEvent{
		Trigger:      "weather",
		AffectedDate: "2026-09-02",
		Details:      map[string]string{"condition": "heavy rain"},
	}
	desc := e.Describe()
	assert.Contains(t, desc, "weather")
	assert.Contains(t, desc, "2026-09-02")
	assert.Contains(t, desc, "condition: heavy rain")

	assert.Contains(t, ReplanEvent{}.Describe(), "an external event")
}
