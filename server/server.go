package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/provider"
	"github.com/tripmesh/tripmesh/realtime"
	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/trip"
)

// Service is the planning surface the server exposes. *tripmesh.Mesh
// satisfies it.
type Service interface {
	Plan(ctx context.Context, req trip.PlanRequest) (*trip.Plan, error)
	Replan(ctx context.Context, sessionID string, event trip.ReplanEvent) (*trip.Plan, error)
}

// ProviderStatus is the read-only slice of the fallback manager the status
// endpoint needs. *provider.Manager satisfies it.
type ProviderStatus interface {
	ProbeAll(ctx context.Context) map[string]provider.Status
	LastUsed() string
}

// Options configure a Server.
type Options struct {
	Logger logging.Logger
}

// Server wires the service, session store, hub and monitor behind a chi
// router.
type Server struct {
	svc       Service
	store     session.Store
	hub       *realtime.Hub
	monitor   *realtime.Monitor
	providers ProviderStatus
	logger    logging.Logger
	router    chi.Router
}

// New constructs the Server and its routes.
func New(svc Service, store session.Store, hub *realtime.Hub, monitor *realtime.Monitor, providers ProviderStatus, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		svc:       svc,
		store:     store,
		hub:       hub,
		monitor:   monitor,
		providers: providers,
		logger:    opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plan", s.handlePlan)
		r.Post("/events/{tripID}", s.handleEvent)
		r.Get("/health/{tripID}", s.handleSessionHealth)
		r.Get("/connections/stats", s.handleConnectionStats)
		r.Get("/providers/status", s.handleProviderStatus)
	})
	r.Get("/ws/{tripID}", s.handleWS)

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
