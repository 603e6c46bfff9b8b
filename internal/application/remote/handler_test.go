package remote

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/application/snapshot"
	"github.com/younwookim/tickhook/internal/infrastructure/storage"
)

func dial(t *testing.T, h *Handler) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHandler_QueuesSteps(t *testing.T) {
	seq := NewSequencer(&recordWriter{})
	conn := dial(t, NewHandler(seq, HandlerConfig{}))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "steps", "steps": []string{"press A", "wait 1s"}}))
	msg := readJSON(t, conn)
	assert.Equal(t, "ack", msg["type"])
	assert.Equal(t, float64(2), msg["queued"])
	assert.Equal(t, 2, seq.Pending())

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "clear"}))
	assert.Equal(t, "ack", readJSON(t, conn)["type"])
	assert.Equal(t, 0, seq.Pending())
}

func TestHandler_RejectsBadInput(t *testing.T) {
	seq := NewSequencer(&recordWriter{})
	conn := dial(t, NewHandler(seq, HandlerConfig{}))

	tests := []struct {
		name    string
		payload string
	}{
		{"malformed", "{not json"},
		{"bad step", `{"type":"steps","steps":["press A","jump"]}`},
		{"unknown type", `{"type":"warp"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))
			msg := readJSON(t, conn)
			assert.Equal(t, "error", msg["type"])
			assert.NotEmpty(t, msg["error"])
		})
	}
	// a rejected batch queues nothing
	assert.Equal(t, 0, seq.Pending())
}

func TestHandler_StreamsStatus(t *testing.T) {
	fsys := storage.NewMem()
	s := snapshot.Snapshot{Tick: 77, Mode: 1, PollCount: 3, Theme: snapshot.ThemeUnknown}
	b, err := s.MarshalBinary()
	require.NoError(t, err)
	fsys.Put("status.bin", b)

	h := NewHandler(NewSequencer(&recordWriter{}), HandlerConfig{
		FS:             fsys,
		StatusName:     "status.bin",
		StatusInterval: 5 * time.Millisecond,
	})
	conn := dial(t, h)

	msg := readJSON(t, conn)
	require.Equal(t, "status", msg["type"])
	status := msg["status"].(map[string]any)
	assert.Equal(t, float64(77), status["tick"])
	assert.Equal(t, float64(3), status["pollCount"])
}

func TestHandler_StepsReachLiveResource(t *testing.T) {
	w := &recordWriter{}
	seq := NewSequencer(w)
	conn := dial(t, NewHandler(seq, HandlerConfig{}))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "steps", "steps": []string{"set B 0 100"}}))
	readJSON(t, conn)

	require.NoError(t, seq.Advance(time.Now()))
	assert.Equal(t, []replay.Input{{Buttons: replay.ButtonB, StickY: 100}}, w.records)
}
