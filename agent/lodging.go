package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// LodgingWorker searches hotels, apartments and unique stays.
type LodgingWorker struct{}

func (LodgingWorker) Name() string        { return trip.WorkerLodging }
func (LodgingWorker) DependsOn() []string { return nil }

// Execute implements Worker.
func (w LodgingWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend places to stay in %s for %d traveler(s), %d night(s).",
		req.Destination, req.Travelers, req.DurationDays)
	if req.Budget > 0 {
		fmt.Fprintf(&b, " Total trip budget is about %.0f %s.", req.Budget, req.Currency)
	}
	if len(req.AccessibilityNeeds) > 0 {
		fmt.Fprintf(&b, " Accessibility requirements: %s.", strings.Join(req.AccessibilityNeeds, ", "))
	}
	b.WriteString(" List options as bullet points with area, style and nightly price range.")

	text, err := generate(ctx, tc, w.Name(),
		"You are an accommodation specialist for a travel planner. Mix price tiers and neighborhoods.",
		b.String())
	if err != nil {
		return nil, err
	}
	return trip.LodgingFragment{Options: bulletItems(text), Raw: text}, nil
}
