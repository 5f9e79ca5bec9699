package trip

// Worker names used as fragment map keys. The orchestrator schedules workers
// by these names and Assemble looks fragments up by them.
const (
	WorkerDestination = "destination"
	WorkerTransport   = "transport"
	WorkerLodging     = "lodging"
	WorkerDining      = "dining"
	WorkerBudget      = "budget"
	WorkerAudioTour   = "audio_tour"
	WorkerSafety      = "safety"
)

// Fragment is the partial output produced by one specialist worker.
// Implementations are tagged variants; Raw always carries the provider text
// the fragment was parsed from so nothing is lost when parsing is partial.
type Fragment interface {
	// Kind returns the worker name this fragment belongs to.
	Kind() string
	// Text returns the raw provider text backing the fragment.
	Text() string
}

// TextFragment is the untyped fallback for content that did not parse into a
// richer shape. Any worker may return it.
type TextFragment struct {
	Worker string `json:"worker"`
	Raw    string `json:"raw"`
}

func (f TextFragment) Kind() string { return f.Worker }
func (f TextFragment) Text() string { return f.Raw }

// DestinationFragment summarizes attractions and local insight.
type DestinationFragment struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights,omitempty"`
	Raw        string   `json:"raw"`
}

func (f DestinationFragment) Kind() string { return WorkerDestination }
func (f DestinationFragment) Text() string { return f.Raw }

// TransportFragment lists how to get there and around.
type TransportFragment struct {
	Options []string `json:"options,omitempty"`
	Raw     string   `json:"raw"`
}

func (f TransportFragment) Kind() string { return WorkerTransport }
func (f TransportFragment) Text() string { return f.Raw }

// LodgingFragment lists places to stay.
type LodgingFragment struct {
	Options []string `json:"options,omitempty"`
	Raw     string   `json:"raw"`
}

func (f LodgingFragment) Kind() string { return WorkerLodging }
func (f LodgingFragment) Text() string { return f.Raw }

// DiningFragment lists restaurant and food recommendations.
type DiningFragment struct {
	Recommendations []string `json:"recommendations,omitempty"`
	Raw             string   `json:"raw"`
}

func (f DiningFragment) Kind() string { return WorkerDining }
func (f DiningFragment) Text() string { return f.Raw }

// BudgetFragment breaks estimated spend down by category.
type BudgetFragment struct {
	Breakdown string `json:"breakdown"`
	Raw       string `json:"raw"`
}

func (f BudgetFragment) Kind() string { return WorkerBudget }
func (f BudgetFragment) Text() string { return f.Raw }

// AudioTourFragment carries narrated tour script segments.
type AudioTourFragment struct {
	Segments []string `json:"segments,omitempty"`
	Raw      string   `json:"raw"`
}

func (f AudioTourFragment) Kind() string { return WorkerAudioTour }
func (f AudioTourFragment) Text() string { return f.Raw }

// SafetyFragment carries safety, health and accessibility notes.
type SafetyFragment struct {
	Advisories []string `json:"advisories,omitempty"`
	Raw        string   `json:"raw"`
}

func (f SafetyFragment) Kind() string { return WorkerSafety }
func (f SafetyFragment) Text() string { return f.Raw }
