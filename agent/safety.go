package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// SafetyWorker produces safety, health and accessibility notes for the
// destination.
type SafetyWorker struct{}

func (SafetyWorker) Name() string        { return trip.WorkerSafety }
func (SafetyWorker) DependsOn() []string { return []string{trip.WorkerDestination} }

// Execute implements Worker.
func (w SafetyWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	fmt.Fprintf(&b, "List safety and health advisories for travelers visiting %s as bullet points, including emergency numbers.", req.Destination)
	if len(req.AccessibilityNeeds) > 0 {
		fmt.Fprintf(&b, " Add accessibility notes for: %s.", strings.Join(req.AccessibilityNeeds, ", "))
	}
	if text := tc.FragmentText(trip.WorkerDestination); text != "" {
		fmt.Fprintf(&b, "\nPlanned areas and activities:\n%s\n", clip(text, 400))
	}

	text, err := generate(ctx, tc, w.Name(),
		"You are a travel safety specialist. Be factual and avoid alarmism.",
		b.String())
	if err != nil {
		return nil, err
	}
	return trip.SafetyFragment{Advisories: bulletItems(text), Raw: text}, nil
}

// DefaultWorkers returns the full specialist set in canonical registration
// order: independents first, then dependents in their declared sequence.
func DefaultWorkers() []Worker {
	return []Worker{
		DestinationWorker{},
		TransportWorker{},
		LodgingWorker{},
		DiningWorker{},
		BudgetWorker{},
		AudioTourWorker{},
		SafetyWorker{},
	}
}
