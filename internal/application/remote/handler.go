package remote

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/younwookim/tickhook/internal/application/monitor"
	"github.com/younwookim/tickhook/internal/application/snapshot"
	"github.com/younwookim/tickhook/internal/infrastructure/logging"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

// DefaultStatusInterval is how often status is pushed to clients
const DefaultStatusInterval = 100 * time.Millisecond

type clientMessage struct {
	Type  string   `json:"type"`
	Steps []string `json:"steps,omitempty"`
}

type ackMessage struct {
	Type    string `json:"type"`
	Queued  int    `json:"queued"`
	Pending int    `json:"pending"`
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type statusMessage struct {
	Type    string            `json:"type"`
	Status  snapshot.Snapshot `json:"status"`
	Fresh   bool              `json:"fresh"`
	Polling bool              `json:"polling"`
}

// HandlerConfig configures a Handler
type HandlerConfig struct {
	// FS and StatusName locate the status slot streamed to clients
	FS         storage.FS
	StatusName string
	// StatusInterval defaults to DefaultStatusInterval
	StatusInterval time.Duration
}

// Handler accepts remote-control websocket sessions. Clients queue steps on
// the shared sequencer and receive the host status as it changes.
type Handler struct {
	seq      *Sequencer
	cfg      HandlerConfig
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler creates a handler queuing onto seq
func NewHandler(seq *Sequencer, cfg HandlerConfig) *Handler {
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = DefaultStatusInterval
	}
	return &Handler{
		seq: seq,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: logging.Named("bridge"),
	}
}

// session serialises writes to one connection
type session struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *session) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// ServeHTTP upgrades the request and runs the session until the client leaves
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	defer conn.Close()

	sess := &session{conn: conn}
	done := make(chan struct{})
	defer close(done)
	if h.cfg.FS != nil && h.cfg.StatusName != "" {
		go h.streamStatus(sess, done)
	}

	h.log.Info("client connected", zap.String("remote", r.RemoteAddr))
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.log.Info("client disconnected", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.log.Debug("discarding malformed message", zap.Error(err))
			if err := sess.writeJSON(errorMessage{Type: "error", Error: "malformed message"}); err != nil {
				return
			}
			continue
		}

		if err := sess.writeJSON(h.handle(msg)); err != nil {
			return
		}
	}
}

// handle applies one client message and returns the reply
func (h *Handler) handle(msg clientMessage) any {
	switch msg.Type {
	case "steps":
		steps := make([]Step, 0, len(msg.Steps))
		for _, line := range msg.Steps {
			st, err := ParseStep(line)
			if err != nil {
				return errorMessage{Type: "error", Error: err.Error()}
			}
			steps = append(steps, st)
		}
		h.seq.Enqueue(steps...)
		return ackMessage{Type: "ack", Queued: len(steps), Pending: h.seq.Pending()}

	case "clear":
		if err := h.seq.Clear(); err != nil {
			return errorMessage{Type: "error", Error: err.Error()}
		}
		return ackMessage{Type: "ack", Pending: 0}
	}
	return errorMessage{Type: "error", Error: "unknown message type " + msg.Type}
}

// streamStatus pushes each new status reading until done
func (h *Handler) streamStatus(sess *session, done <-chan struct{}) {
	mon := monitor.New(h.cfg.FS, h.cfg.StatusName)
	ticker := time.NewTicker(h.cfg.StatusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}

		r, err := mon.Read()
		if err != nil || (!r.First && !r.Fresh) {
			continue
		}
		msg := statusMessage{Type: "status", Status: r.Snapshot, Fresh: r.Fresh, Polling: r.Polling}
		if err := sess.writeJSON(msg); err != nil {
			return
		}
	}
}
