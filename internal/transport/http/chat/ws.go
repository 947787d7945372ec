package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/service"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

const (
	maxMessageSize = 8 << 20
	writeTimeout   = 10 * time.Second
)

// Frame is one WebSocket message sent to the client.
type Frame struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

// FrameFor converts a stream event into its WebSocket frame.
func FrameFor(ev domain.StreamEvent) Frame {
	switch ev.Kind {
	case domain.StreamEventText:
		return Frame{Text: ev.Text}
	case domain.StreamEventError:
		return Frame{Error: ev.Error}
	default:
		return Frame{Done: true}
	}
}

// ChatWS serves the relay over a WebSocket. Every inbound text message is a
// chat request; its events are written back in order. One turn is relayed at
// a time per connection.
// GET /api/chat/ws
func (h *Handler) ChatWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket", zap.Error(err))
		return err
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	sessionID := httpx.SessionID(c)
	ctx := c.Request().Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", zap.Error(err))
			}
			return nil
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if err := h.relayTurn(ctx, conn, sessionID, data); err != nil {
			h.logger.Debug("websocket write failed", zap.Error(err))
			return nil
		}
	}
}

func (h *Handler) relayTurn(ctx context.Context, conn *websocket.Conn, sessionID string, data []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var in service.ChatInput
	if err := json.Unmarshal(data, &in); err != nil {
		return writeFrame(conn, Frame{Error: "Invalid request body"})
	}
	in.SessionID = sessionID

	events, err := h.service.Start(ctx, in)
	if err != nil {
		return writeFrame(conn, Frame{Error: err.Error()})
	}

	var writeErr error
	for ev := range events {
		if writeErr != nil {
			continue
		}
		if writeErr = writeFrame(conn, FrameFor(ev)); writeErr != nil {
			cancel()
		}
	}
	return writeErr
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(f)
}
