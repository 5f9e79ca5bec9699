package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tripmesh/tripmesh/realtime"
	"github.com/tripmesh/tripmesh/session"
	"github.com/tripmesh/tripmesh/trip"
)

// CloseReplaced is the close code sent to a connection evicted by a newer
// subscriber for the same session. Cap rejections use the standard
// CloseTryAgainLater (1013).
const CloseReplaced = 4000

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The REST surface is already open to all origins; the channel follows.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsHandle adapts a gorilla connection to realtime.Handle. Writes are
// serialized; Close signals eviction with a distinct close code.
type wsHandle struct {
	mu   sync.Mutex
	conn *websocket.Conn
	once sync.Once
}

var _ realtime.Handle = (*wsHandle)(nil)

func newWSHandle(conn *websocket.Conn) *wsHandle {
	return &wsHandle{conn: conn}
}

func (h *wsHandle) WriteJSON(v any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conn.WriteJSON(v)
}

func (h *wsHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.mu.Lock()
		msg := websocket.FormatCloseMessage(CloseReplaced, "replaced by newer connection")
		_ = h.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		h.mu.Unlock()
		err = h.conn.Close()
	})
	return err
}

// handleWS upgrades the request and serves the session channel protocol
// until the peer disconnects or the handle is evicted.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripID")
	if _, err := s.store.Get(tripID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown trip: "+tripID)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "trip", tripID, "error", err)
		return
	}

	handle := newWSHandle(conn)
	if err := s.hub.Subscribe(tripID, handle); err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many connections")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
		return
	}
	defer func() {
		s.hub.Unsubscribe(tripID, handle)
		_ = conn.Close()
	}()

	s.logger.Info("session channel opened", "trip", tripID)
	if err := handle.WriteJSON(realtime.Envelope{Type: realtime.TypeConnected, SessionID: tripID}); err != nil {
		return
	}

	for {
		var env realtime.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			s.logger.Debug("session channel closed", "trip", tripID, "error", err)
			return
		}
		s.dispatch(r, tripID, handle, env)
	}
}

// dispatch handles one inbound session channel message.
func (s *Server) dispatch(r *http.Request, tripID string, handle *wsHandle, env realtime.Envelope) {
	switch env.Type {
	case realtime.TypePing:
		_ = handle.WriteJSON(realtime.Envelope{Type: realtime.TypePong})

	case realtime.TypeGetUpdates:
		_ = handle.WriteJSON(realtime.Envelope{
			Type:      realtime.TypeUpdates,
			SessionID: tripID,
			Data:      s.hub.Updates(tripID),
		})

	case realtime.TypeTriggerReplan:
		event := trip.ReplanEvent{
			Trigger:      env.EventDetails["trigger"],
			AffectedDate: env.EventDetails["affected_date"],
			Details:      env.EventDetails,
		}
		// Replan pushes its own replan_result on success; only failures are
		// reported here.
		if _, err := s.svc.Replan(r.Context(), tripID, event); err != nil {
			_ = handle.WriteJSON(realtime.Envelope{Type: realtime.TypeError, Message: err.Error()})
		}

	default:
		_ = handle.WriteJSON(realtime.Envelope{Type: realtime.TypeError, Message: "unknown message type: " + env.Type})
	}
}
