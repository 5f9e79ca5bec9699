package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// BudgetWorker aggregates every Phase-1 fragment into a cost breakdown. It
// declares all four independent workers as dependencies, so it always runs
// over a fully settled fragment map.
type BudgetWorker struct{}

func (BudgetWorker) Name() string { return trip.WorkerBudget }

func (BudgetWorker) DependsOn() []string {
	return []string{trip.WorkerDestination, trip.WorkerTransport, trip.WorkerLodging, trip.WorkerDining}
}

// Execute implements Worker.
func (w BudgetWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Create a budget breakdown for a %s trip to %s for %d traveler(s) in %s.",
		req.DurationDaysLabel(), req.Destination, req.Travelers, req.Currency)
	if req.Budget > 0 {
		fmt.Fprintf(&b, " Target total budget: %.0f %s.", req.Budget, req.Currency)
	}
	b.WriteString(" Break costs into transport, accommodation, food, activities and contingency.\n")

	for _, dep := range w.DependsOn() {
		if text := tc.FragmentText(dep); text != "" {
			fmt.Fprintf(&b, "\n%s plan:\n%s\n", dep, clip(text, 600))
		}
	}

	text, err := generate(ctx, tc, w.Name(),
		"You are a travel budget specialist. Produce realistic numbers grounded in the plans you are given.",
		b.String())
	if err != nil {
		return nil, err
	}
	return trip.BudgetFragment{Breakdown: firstParagraph(text), Raw: text}, nil
}
