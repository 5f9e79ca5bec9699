package realtime

import (
	"context"
	"errors"
	"strings"

	"github.com/tripmesh/tripmesh/agent"
	"github.com/tripmesh/tripmesh/logging"
	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/trip"
)

// ErrUnknownSession is returned by Trigger for a session ID with no stored
// state. No orchestration runs in that case.
var ErrUnknownSession = errors.New("realtime: unknown session")

// Orchestrator is the slice of the agent orchestrator the replanner needs.
type Orchestrator interface {
	Run(ctx context.Context, req trip.PlanRequest) agent.RunResult
}

// ReplannerOptions configure a Replanner.
type ReplannerOptions struct {
	Logger logging.Logger
}

// Replanner turns an inbound event (client request or monitoring detection)
// into a fresh orchestrator run for the affected session, stores the new
// plan and publishes the outcome.
type Replanner struct {
	store  session.Store
	orch   Orchestrator
	hub    *Hub
	logger logging.Logger
}

// NewReplanner constructs a Replanner.
func NewReplanner(store session.Store, orch Orchestrator, hub *Hub, optFns ...func(o *ReplannerOptions)) *Replanner {
	opts := ReplannerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Replanner{store: store, orch: orch, hub: hub, logger: opts.Logger}
}

// Trigger replans the session against the event. The new request is the
// session's original one with the event appended as additional context, so
// every worker sees what changed. The stored plan is replaced and a
// replan_result message is pushed to the session's subscriber if one is
// live.
func (r *Replanner) Trigger(ctx context.Context, sessionID string, event trip.ReplanEvent) (*trip.Plan, error) {
	sess, err := r.store.Get(sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrUnknownSession
		}
		return nil, err
	}

	req := sess.Request
	req.AdditionalInfo = joinContext(req.AdditionalInfo, event.Describe())

	r.logger.Info("replanning session", "session", sessionID, "trigger", event.Trigger)
	rr := r.orch.Run(ctx, req)
	plan := trip.Assemble(req, rr.FragmentMap(), rr.FailureMap())

	if err := r.store.SavePlan(sessionID, plan); err != nil {
		return nil, err
	}

	r.hub.Publish(sessionID, Update{
		Kind:     "replan",
		Message:  "plan updated: " + event.Describe(),
		Severity: SeverityWarning,
	})
	r.hub.Send(sessionID, Envelope{Type: TypeReplanResult, SessionID: sessionID, Data: plan})
	return plan, nil
}

func joinContext(existing, added string) string {
	if existing == "" {
		return added
	}
	return strings.TrimRight(existing, ". ") + ". " + added
}
