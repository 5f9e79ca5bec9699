package trip

import (
	"time"
)

// Plan statuses. A plan is degraded when at least one section fell back to
// placeholder content and failed when every section did.
const (
	StatusComplete = "complete"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Section is one rendered slice of the plan. Fallback marks sections whose
// worker failed and whose content is placeholder text; callers always see a
// fully populated shape either way.
type Section struct {
	Content  string   `json:"content"`
	Items    []string `json:"items,omitempty"`
	Fallback bool     `json:"fallback,omitempty"`
}

// Plan is the assembled response for one trip. Every section is always
// present; a fully failed run yields a complete shape with fallback sections,
// never a partial object.
type Plan struct {
	TripID      string      `json:"trip_id"`
	Request     PlanRequest `json:"request"`
	Summary     string      `json:"summary"`
	Status      string      `json:"status"`
	GeneratedAt time.Time   `json:"generated_at"`

	Destination Section `json:"destination"`
	Transport   Section `json:"transport"`
	Lodging     Section `json:"lodging"`
	Dining      Section `json:"dining"`
	Budget      Section `json:"budget"`
	AudioTour   Section `json:"audio_tour"`
	Safety      Section `json:"safety"`

	// Errors records per-worker failure messages keyed by worker name.
	Errors map[string]string `json:"errors,omitempty"`
}

// fallbackSection renders placeholder content for a worker that produced
// nothing usable.
func fallbackSection(worker string) Section {
	return Section{
		Content:  "No " + worker + " information could be generated for this trip. Please retry later.",
		Fallback: true,
	}
}

// Assemble folds a fragment map into a Plan. fragments holds one entry per
// scheduled worker; failures carries the error message for workers that did
// not produce a fragment. Missing or failed workers get fallback sections so
// the response shape is always complete.
func Assemble(req PlanRequest, fragments map[string]Fragment, failures map[string]string) *Plan {
	p := &Plan{
		TripID:      req.TripID,
		Request:     req,
		GeneratedAt: time.Now(),
		Errors:      failures,
	}

	p.Destination = sectionFor(fragments, WorkerDestination)
	p.Transport = sectionFor(fragments, WorkerTransport)
	p.Lodging = sectionFor(fragments, WorkerLodging)
	p.Dining = sectionFor(fragments, WorkerDining)
	p.Budget = sectionFor(fragments, WorkerBudget)
	p.Safety = sectionFor(fragments, WorkerSafety)

	if req.IncludeAudioTour {
		p.AudioTour = sectionFor(fragments, WorkerAudioTour)
	} else {
		p.AudioTour = Section{Content: "Audio tour not requested.", Fallback: true}
	}

	if f, ok := fragments[WorkerDestination].(DestinationFragment); ok && f.Summary != "" {
		p.Summary = f.Summary
	} else {
		p.Summary = req.DurationDaysLabel() + " trip to " + req.Destination
	}

	p.Status = planStatus(req, fragments)
	return p
}

func sectionFor(fragments map[string]Fragment, worker string) Section {
	f, ok := fragments[worker]
	if !ok || f == nil || f.Text() == "" {
		return fallbackSection(worker)
	}
	s := Section{Content: f.Text()}
	switch v := f.(type) {
	case DestinationFragment:
		s.Items = v.Highlights
	case TransportFragment:
		s.Items = v.Options
	case LodgingFragment:
		s.Items = v.Options
	case DiningFragment:
		s.Items = v.Recommendations
	case AudioTourFragment:
		s.Items = v.Segments
	case SafetyFragment:
		s.Items = v.Advisories
	}
	return s
}

func planStatus(req PlanRequest, fragments map[string]Fragment) string {
	scheduled := []string{
		WorkerDestination, WorkerTransport, WorkerLodging,
		WorkerDining, WorkerBudget, WorkerSafety,
	}
	if req.IncludeAudioTour {
		scheduled = append(scheduled, WorkerAudioTour)
	}
	present := 0
	for _, w := range scheduled {
		if f, ok := fragments[w]; ok && f != nil && f.Text() != "" {
			present++
		}
	}
	switch present {
	case len(scheduled):
		return StatusComplete
	case 0:
		return StatusFailed
	default:
		return StatusDegraded
	}
}
