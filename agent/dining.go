package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// DiningWorker recommends restaurants and food experiences.
type DiningWorker struct{}

func (DiningWorker) Name() string        { return trip.WorkerDining }
func (DiningWorker) DependsOn() []string { return nil }

// Execute implements Worker.
func (w DiningWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend restaurants and food experiences in %s.", req.Destination)
	if len(req.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, " Dietary restrictions: %s.", strings.Join(req.DietaryRestrictions, ", "))
	}
	b.WriteString(" Include local specialties. List each recommendation as a bullet point with cuisine and price range.")

	text, err := generate(ctx, tc, w.Name(),
		"You are a dining specialist for a travel planner. Favor local, well-regarded spots.",
		b.String())
	if err != nil {
		return nil, err
	}
	return trip.DiningFragment{Recommendations: bulletItems(text), Raw: text}, nil
}
