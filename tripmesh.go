// Package tripmesh provides a high-level façade over the planning core: the
// provider fallback manager, the worker registry and orchestrator, the
// session store and the realtime update machinery. Most applications
// interact with this package by:
//  1. Creating a Mesh via New() with at least one configured provider
//  2. Optionally registering extra workers beyond the default specialist set
//  3. Calling Plan() per trip request and Replan() on external events
//
// The façade delegates orchestration to agent.Orchestrator while keeping
// wiring concise. All defaults are safe for local development and testing;
// production deployments supply real provider credentials and a structured
// logger.
package tripmesh

import (
	"context"

	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/provider"
	"github.com/tripmesh/tripmesh/realtime"
	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/trip"
)

// Options configures the Mesh instance.
type Options struct {
	// Workers to register. Defaults to the full specialist set.
	Workers []agent.Worker

	// SessionStore defaults to the in-memory implementation.
	SessionStore session.Store

	// Hub defaults to a fresh hub with default limits.
	Hub *realtime.Hub

	// Checker performs monitoring-loop condition checks. Nil disables them.
	Checker realtime.Checker

	// MonitorOptions are applied to the per-session monitor.
	MonitorOptions []func(o *realtime.MonitorOptions)

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Mesh aggregates the planning core behind two operations: Plan and Replan.
type Mesh struct {
	providers *provider.Manager
	registry  *agent.Registry
	orch      *agent.Orchestrator
	store     session.Store
	hub       *realtime.Hub
	monitor   *realtime.Monitor
	replanner *realtime.Replanner
	logger    logging.Logger
}

// New creates a Mesh over the given fallback manager. Any unset service is
// initialized with an in-memory implementation.
func New(providers *provider.Manager, optFns ...func(o *Options)) *Mesh {
	opts := Options{
		Workers:      agent.DefaultWorkers(),
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Hub == nil {
		opts.Hub = realtime.NewHub()
	}

	registry := agent.NewRegistry()
	for _, w := range opts.Workers {
		registry.Register(w)
	}

	orch := agent.NewOrchestrator(registry, providers, func(o *agent.OrchestratorOptions) {
		o.Logger = opts.Logger
	})
	monitor := realtime.NewMonitor(opts.SessionStore, opts.Hub, opts.Checker, opts.MonitorOptions...)
	replanner := realtime.NewReplanner(opts.SessionStore, orch, opts.Hub, func(o *realtime.ReplannerOptions) {
		o.Logger = opts.Logger
	})

	return &Mesh{
		providers: providers,
		registry:  registry,
		orch:      orch,
		store:     opts.SessionStore,
		hub:       opts.Hub,
		monitor:   monitor,
		replanner: replanner,
		logger:    opts.Logger,
	}
}

// Plan validates the request, runs a full orchestration and stores the
// assembled plan under a new session. A degraded plan is still a plan: every
// section is rendered, with fallback text where workers failed.
func (m *Mesh) Plan(ctx context.Context, req trip.PlanRequest) (*trip.Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sess, err := m.store.Create(req)
	if err != nil {
		return nil, err
	}
	req = sess.Request // carries the generated trip ID

	rr := m.orch.Run(ctx, req)
	plan := trip.Assemble(req, rr.FragmentMap(), rr.FailureMap())
	if err := m.store.SavePlan(sess.ID, plan); err != nil {
		return nil, err
	}

	m.logger.Info("plan assembled",
		"trip", sess.ID, "status", plan.Status, "elapsed", rr.Elapsed)
	return plan, nil
}

// Replan re-runs orchestration for a stored session against an external
// event and publishes the outcome on the session channel.
func (m *Mesh) Replan(ctx context.Context, sessionID string, event trip.ReplanEvent) (*trip.Plan, error) {
	return m.replanner.Trigger(ctx, sessionID, event)
}

// Sessions exposes the session store.
func (m *Mesh) Sessions() session.Store { return m.store }

// Hub exposes the realtime hub.
func (m *Mesh) Hub() *realtime.Hub { return m.hub }

// Monitor exposes the per-session monitor.
func (m *Mesh) Monitor() *realtime.Monitor { return m.monitor }

// Providers exposes the fallback manager.
func (m *Mesh) Providers() *provider.Manager { return m.providers }

// Registry exposes the worker registry.
func (m *Mesh) Registry() *agent.Registry { return m.registry }
