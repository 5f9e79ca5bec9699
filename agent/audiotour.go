package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripmesh/tripmesh/trip"
)

// AudioTourWorker writes a narrated tour script for the destination's
// highlights. It only runs when the request asks for an audio tour.
type AudioTourWorker struct{}

func (AudioTourWorker) Name() string        { return trip.WorkerAudioTour }
func (AudioTourWorker) DependsOn() []string { return []string{trip.WorkerDestination} }

// Enabled gates the worker on the request feature flag.
func (AudioTourWorker) Enabled(req trip.PlanRequest) bool { return req.IncludeAudioTour }

// Execute implements Worker.
func (w AudioTourWorker) Execute(ctx context.Context, tc Context) (trip.Fragment, error) {
	req := tc.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Write an immersive walking audio tour script for %s.", req.Destination)
	if text := tc.FragmentText(trip.WorkerDestination); text != "" {
		fmt.Fprintf(&b, " Cover these researched highlights:\n%s\n", clip(text, 600))
	}
	b.WriteString(" Write one short narrated segment per stop, separated by blank lines.")

	text, err := generate(ctx, tc, w.Name(),
		"You are an audio tour narrator with a friendly guide voice. Write text meant to be spoken aloud.",
		b.String())
	if err != nil {
		return nil, err
	}

	var segments []string
	for _, seg := range strings.Split(text, "\n\n") {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return trip.AudioTourFragment{Segments: segments, Raw: text}, nil
}
