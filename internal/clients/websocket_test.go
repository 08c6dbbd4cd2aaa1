package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ws "naijayield/internal/transport/websocket"
)

type wireMessage struct {
	UserID  string         `json:"user_id"`
	Type    string         `json:"type"`
	Channel string         `json:"channel"`
	Data    map[string]any `json:"data"`
}

func connectUser(t *testing.T, userID string) (*WebSocketClient, *websocket.Conn) {
	t.Helper()
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userID)
	}))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		server.Close()
		cancel()
	})

	require.Eventually(t, func() bool { return hub.Connected(userID) == 1 }, time.Second, 10*time.Millisecond)
	return NewWebSocketClient(hub), conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(time.Second))
	var m wireMessage
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestWebSocketClient_NotifyExportProgress(t *testing.T) {
	client, conn := connectUser(t, "u-1")

	require.NoError(t, client.NotifyExportProgress(context.Background(), "u-1", "export-123", 50.5, "scoring"))

	m := readMessage(t, conn)
	assert.Equal(t, MessageExportProgress, m.Type)
	assert.Equal(t, "u-1", m.UserID)
	assert.Equal(t, "portfolio_export_progress#u-1", m.Channel)
	assert.Equal(t, "export-123", m.Data["id"])
	assert.Equal(t, 50.5, m.Data["progress"])
	assert.Equal(t, "scoring", m.Data["stage"])
}

func TestWebSocketClient_NotifyExportComplete(t *testing.T) {
	client, conn := connectUser(t, "u-1")

	require.NoError(t, client.NotifyExportComplete(context.Background(), "u-1", "export-123", "https://example.com/file.xlsx", "portfolio.xlsx"))

	m := readMessage(t, conn)
	assert.Equal(t, MessageExportComplete, m.Type)
	assert.Equal(t, "portfolio_export_complete#u-1", m.Channel)
	assert.Equal(t, "https://example.com/file.xlsx", m.Data["url"])
	assert.Equal(t, "portfolio.xlsx", m.Data["filename"])
}

func TestWebSocketClient_NotifyExportFailed(t *testing.T) {
	client, conn := connectUser(t, "u-1")

	require.NoError(t, client.NotifyExportFailed(context.Background(), "u-1", "export-123", "upload failed"))

	m := readMessage(t, conn)
	assert.Equal(t, MessageExportFailed, m.Type)
	assert.Equal(t, "upload failed", m.Data["message"])
}

func TestWebSocketClient_MultipleProgressUpdates(t *testing.T) {
	client, conn := connectUser(t, "u-1")

	for _, p := range []float64{10, 25, 50, 75, 100} {
		require.NoError(t, client.NotifyExportProgress(context.Background(), "u-1", "export-123", p, ""))
		m := readMessage(t, conn)
		assert.Equal(t, p, m.Data["progress"])
		assert.NotContains(t, m.Data, "stage")
	}
}

func TestWebSocketClient_NilHub(t *testing.T) {
	client := NewWebSocketClient(nil)
	ctx := context.Background()

	assert.NoError(t, client.NotifyExportProgress(ctx, "u-1", "e", 1, ""))
	assert.NoError(t, client.NotifyExportComplete(ctx, "u-1", "e", "u", "f"))
	assert.NoError(t, client.NotifyExportFailed(ctx, "u-1", "e", "m"))
}
