package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// DestinationWorker researches attractions, activities and local insight for
// the requested destination.
type DestinationWorker struct{}

func (DestinationWorker) Name() string        { return trip.WorkerDestination }
func (DestinationWorker) DependsOn() []string { return nil }

// Execute implements Worker.
func (w DestinationWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Research %s for a %s trip", req.Destination, req.DurationDaysLabel())
	if len(req.Interests) > 0 {
		fmt.Fprintf(&b, " focused on %s", strings.Join(req.Interests, ", "))
	}
	b.WriteString(". Start with a one-paragraph overview, then list the top attractions and activities as bullet points with a short reason for each.")
	if req.AdditionalInfo != "" {
		b.WriteString("\nAdditional context: " + req.AdditionalInfo)
	}

	text, err := generate(ctx, tc, w.Name(),
		"You are a destination research specialist for a travel planner. Be concrete and current.",
		b.String())
	if err != nil {
		return nil, err
	}
	return trip.DestinationFragment{
		Summary:    firstParagraph(text),
		Highlights: bulletItems(text),
		Raw:        text,
	}, nil
}
