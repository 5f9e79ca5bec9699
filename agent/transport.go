package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// TransportWorker finds ways to reach the destination and get around locally.
type TransportWorker struct{}

func (TransportWorker) Name() string        { return trip.WorkerTransport }
func (TransportWorker) DependsOn() []string { return nil }

// Execute implements Worker.
func (w TransportWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	if req.Origin != "" {
		fmt.Fprintf(&b, "Recommend transport options from %s to %s", req.Origin, req.Destination)
	} else {
		fmt.Fprintf(&b, "Recommend transport options for reaching %s", req.Destination)
	}
	fmt.Fprintf(&b, " for %d traveler(s), plus local transportation once there. List each option as a bullet point with rough duration and cost.", req.Travelers)

	text, err := generate(ctx, tc, w.Name(),
		"You are a transport planning specialist for a travel planner. Cover both long-distance and local options.",
		b.String())
	if err != nil {
		return nil, err
	}
	return trip.TransportFragment{Options: bulletItems(text), Raw: text}, nil
}
