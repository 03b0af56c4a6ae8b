package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsMessage struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialSession(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/" + id
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestSessionWebsocketFlow(t *testing.T) {
	e, hub := newTestServer(newStubSource())
	srv := httptest.NewServer(e)
	defer srv.Close()

	s, _, err := hub.Open(context.Background(), url.Values{"symbol": {"BTCUSDT"}})
	require.NoError(t, err)

	conn := dialSession(t, srv, s.ID)

	first := readMessage(t, conn)
	assert.Equal(t, MsgSnapshot, first.Type)
	assert.Contains(t, string(first.Data), `"symbol":"BTCUSDT"`)

	require.NoError(t, conn.WriteJSON(WSInbound{Type: MsgHover, Ts: "2024-03-01T00:01:05Z"}))
	hover := readMessage(t, conn)
	assert.Equal(t, MsgHover, hover.Type)
	assert.Contains(t, string(hover.Data), `"matched":true`)

	require.NoError(t, conn.WriteJSON(WSInbound{Type: MsgLeave}))
	assert.Equal(t, MsgLeave, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(WSInbound{Type: MsgFilters, Query: "symbol=ETHUSDT&volume=true"}))
	next := readMessage(t, conn)
	require.Equal(t, MsgSnapshot, next.Type)
	assert.Contains(t, string(next.Data), `"symbol":"ETHUSDT"`)

	require.NoError(t, conn.WriteJSON(WSInbound{Type: "zoom"}))
	bad := readMessage(t, conn)
	assert.Equal(t, MsgError, bad.Type)
	assert.Contains(t, bad.Error, "zoom")
}

func TestSessionWebsocketUnknownSession(t *testing.T) {
	e, _ := newTestServer(newStubSource())
	srv := httptest.NewServer(e)
	defer srv.Close()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/3f1e1c1e-0000-4000-8000-000000000000"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
