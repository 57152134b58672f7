package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:3000"

// startTestServer runs a gateway behind an httptest server and returns the
// gateway together with the WebSocket URL. Everything is torn down on cleanup.
func startTestServer(t *testing.T, cfg *Config) (*Gateway, *httptest.Server, string) {
	t.Helper()

	gw := New(cfg)
	go gw.Run()

	ts := httptest.NewServer(SetupRoutes(gw))
	t.Cleanup(func() {
		_ = gw.Shutdown(2 * time.Second)
		ts.Close()
	})

	return gw, ts, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// connectWebSocket dials url with an allowed Origin header.
func connectWebSocket(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	headers.Set("Origin", testOrigin)

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// emit writes one request envelope.
func emit(t *testing.T, conn *websocket.Conn, event, id string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, ID: id, Data: raw}))
}

// nextEnvelope reads the next frame, failing the test after two seconds.
func nextEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// expectEvent reads the next frame, asserts its name and decodes its data.
func expectEvent(t *testing.T, conn *websocket.Conn, event string, into any) Envelope {
	t.Helper()

	env := nextEnvelope(t, conn)
	require.Equal(t, event, env.Event, "unexpected frame: %s", env.Data)
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
	return env
}

// expectAck reads the ack for id and returns its success flag.
func expectAck(t *testing.T, conn *websocket.Conn, id string) bool {
	t.Helper()

	var ack AckPayload
	env := expectEvent(t, conn, EventAck, &ack)
	require.Equal(t, id, env.ID)
	return ack.Success
}

// expectNoMessage asserts that nothing arrives within wait.
func expectNoMessage(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "expected no message, got %s", data)
}

// closeWebSocket sends a normal close frame and closes the connection.
func closeWebSocket(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
}
