package realtime

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tripmesh/tripmesh/logging"
)

// Session channel message types, both directions.
const (
	TypePing          = "ping"
	TypePong          = "pong"
	TypeConnected     = "connected"
	TypeGetUpdates    = "get_updates"
	TypeUpdates       = "updates"
	TypeTriggerReplan = "trigger_replan"
	TypeReplanResult  = "replan_result"
	TypeError         = "error"
)

// Envelope is the wire shape of every session channel message. Unused fields
// are omitted per message type.
type Envelope struct {
	Type         string            `json:"type"`
	SessionID    string            `json:"session_id,omitempty"`
	Message      string            `json:"message,omitempty"`
	Data         any               `json:"data,omitempty"`
	EventDetails map[string]string `json:"event_details,omitempty"`
}

// Update severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Update is one ephemeral notification pushed to a session's subscriber.
type Update struct {
	Kind      string            `json:"kind"`
	Message   string            `json:"message"`
	Severity  string            `json:"severity"`
	Action    map[string]string `json:"action,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Handle is the transport contract a subscriber hands to the Hub. Close must
// signal eviction to the peer; it is called at most once by the Hub.
type Handle interface {
	WriteJSON(v any) error
	Close() error
}

// ErrConnectionLimit is returned by Subscribe when the global pool is full.
var ErrConnectionLimit = errors.New("realtime: connection limit reached")

// HubOptions configure a Hub.
type HubOptions struct {
	// MaxConnections caps the global live handle count.
	MaxConnections int
	// BufferSize bounds the per-session ring of recent updates.
	BufferSize int
	Logger     logging.Logger
}

// Hub routes updates to at most one live handle per session and keeps a
// short per-session buffer of recent updates for pull-style retrieval.
// Subscribe, Publish and Unsubscribe for the same session are mutually
// exclusive, so a publish can never interleave with an eviction.
type Hub struct {
	mu      sync.Mutex
	conns   map[string]Handle
	buffers map[string][]Update
	max     int
	bufSize int
	logger  logging.Logger
}

// NewHub constructs a Hub. Defaults: 100 connections, 20 buffered updates.
func NewHub(optFns ...func(o *HubOptions)) *Hub {
	opts := HubOptions{
		MaxConnections: 100,
		BufferSize:     20,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Hub{
		conns:   make(map[string]Handle),
		buffers: make(map[string][]Update),
		max:     opts.MaxConnections,
		bufSize: opts.BufferSize,
		logger:  opts.Logger,
	}
}

// Subscribe installs the handle as the session's single live connection.
// An existing handle for the same session is closed first (eviction), so a
// replacement never counts against the cap. A genuinely new session is
// rejected with ErrConnectionLimit when the pool is full; the rejected handle
// is not registered and not closed — the caller owns its teardown.
func (h *Hub) Subscribe(sessionID string, handle Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prior, ok := h.conns[sessionID]; ok {
		h.logger.Info("evicting prior connection", "session", sessionID)
		_ = prior.Close()
	} else if len(h.conns) >= h.max {
		return ErrConnectionLimit
	}
	h.conns[sessionID] = handle
	return nil
}

// Unsubscribe removes the handle if it is still the session's current one.
// A stale handle (already evicted and replaced) is left alone.
func (h *Hub) Unsubscribe(sessionID string, handle Handle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.conns[sessionID]; ok && current == handle {
		delete(h.conns, sessionID)
	}
}

// Publish buffers the update and pushes it to the session's subscriber if
// one is live. Delivery failure marks the handle dead and unregisters it;
// nothing is raised to the publisher.
func (h *Hub) Publish(sessionID string, u Update) {
	if u.Timestamp.IsZero() {
		u.Timestamp = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	buf := append(h.buffers[sessionID], u)
	if len(buf) > h.bufSize {
		buf = buf[len(buf)-h.bufSize:]
	}
	h.buffers[sessionID] = buf

	handle, ok := h.conns[sessionID]
	if !ok {
		return
	}
	if err := handle.WriteJSON(Envelope{Type: TypeUpdates, SessionID: sessionID, Data: []Update{u}}); err != nil {
		h.logger.Warn("dropping dead connection", "session", sessionID, "error", err)
		_ = handle.Close()
		delete(h.conns, sessionID)
	}
}

// Send delivers an arbitrary envelope to the session's subscriber, with the
// same dead-handle cleanup as Publish. It reports whether a live handle was
// present.
func (h *Hub) Send(sessionID string, env Envelope) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	handle, ok := h.conns[sessionID]
	if !ok {
		return false
	}
	if err := handle.WriteJSON(env); err != nil {
		h.logger.Warn("dropping dead connection", "session", sessionID, "error", err)
		_ = handle.Close()
		delete(h.conns, sessionID)
		return false
	}
	return true
}

// Updates returns a snapshot of the session's buffered updates, oldest first.
func (h *Hub) Updates(sessionID string) []Update {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.buffers[sessionID]
	out := make([]Update, len(buf))
	copy(out, buf)
	return out
}

// Forget drops the session's buffered updates. Called on session teardown.
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.buffers, sessionID)
}

// Stats is a read-only snapshot of the connection pool.
type Stats struct {
	Total          int      `json:"total"`
	ActiveSessions []string `json:"active_sessions"`
}

// Stats returns the current connection count and active session IDs.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return Stats{Total: len(h.conns), ActiveSessions: ids}
}
