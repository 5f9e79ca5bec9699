package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tripmesh/tripmesh/trip"
)

// ErrNotFound is returned when the requested session does not exist.
var ErrNotFound = errors.New("session: not found")

// Session is the stored state of one planned trip. It is a value snapshot:
// the store clones on read and write, so callers never share memory with the
// stored copy.
type Session struct {
	ID         string           `json:"id"`
	Request    trip.PlanRequest `json:"request"`
	Plan       *trip.Plan       `json:"plan,omitempty"`
	Monitoring bool             `json:"monitoring"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	if s.Plan != nil {
		plan := *s.Plan
		if s.Plan.Errors != nil {
			plan.Errors = make(map[string]string, len(s.Plan.Errors))
			for k, v := range s.Plan.Errors {
				plan.Errors[k] = v
			}
		}
		clone.Plan = &plan
	}
	return &clone
}

// Store is the session persistence contract.
type Store interface {
	Create(req trip.PlanRequest) (*Session, error)
	Get(sessionID string) (*Session, error)
	SavePlan(sessionID string, plan *trip.Plan) error
	SetMonitoring(sessionID string, on bool) error
	Delete(sessionID string) error
	IDs() []string
}

// InMemoryStore is a volatile Store implementation keeping sessions in a
// process local map. It is safe for concurrent access.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*Session)}
}

// Create stores a new session for the request. The request's TripID becomes
// the session ID; when empty a fresh one is generated and written back.
// Creating over an existing ID overwrites it, matching replan-from-scratch
// semantics.
func (s *InMemoryStore) Create(req trip.PlanRequest) (*Session, error) {
	if req.TripID == "" {
		req.TripID = uuid.NewString()
	}
	now := time.Now()
	sess := &Session{
		ID:        req.TripID,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return sess.Clone(), nil
}

// Get returns a clone of the stored session.
func (s *InMemoryStore) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

// SavePlan replaces the stored plan for the session.
func (s *InMemoryStore) SavePlan(sessionID string, plan *trip.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	sess.Plan = plan
	sess.UpdatedAt = time.Now()
	return nil
}

// SetMonitoring flips the monitoring flag for the session.
func (s *InMemoryStore) SetMonitoring(sessionID string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	sess.Monitoring = on
	sess.UpdatedAt = time.Now()
	return nil
}

// Delete removes the session. Deleting an absent session is a no-op.
func (s *InMemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// IDs returns the stored session IDs in unspecified order.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}
