package clients

import (
	"context"

	ws "naijayield/internal/transport/websocket"
)

const (
	MessageExportProgress = "export_progress"
	MessageExportComplete = "export_complete"
	MessageExportFailed   = "export_failed"
)

// WebSocketClient pushes export notifications to a user's open sockets.
// A nil hub turns every notification into a no-op.
type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

func channel(kind, userID string) string {
	return kind + "#" + userID
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error {
	if c == nil || c.hub == nil {
		return nil
	}

	data := map[string]any{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    MessageExportProgress,
		Channel: channel("portfolio_export_progress", userID),
		Data:    data,
	})
	return nil
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error {
	if c == nil || c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    MessageExportComplete,
		Channel: channel("portfolio_export_complete", userID),
		Data: map[string]any{
			"id":       exportID,
			"url":      url,
			"filename": filename,
		},
	})
	return nil
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error {
	if c == nil || c.hub == nil {
		return nil
	}

	c.hub.Broadcast(userID, &ws.Message{
		Type:    MessageExportFailed,
		Channel: channel("portfolio_export_failed", userID),
		Data: map[string]any{
			"id":      exportID,
			"message": errMsg,
		},
	})
	return nil
}
