// Package chat serves the streaming chat relay over SSE and WebSocket.
package chat

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/service"
	"github.com/xiaot623/gogo/vizstudio/internal/sse"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// Handler handles chat relay requests.
type Handler struct {
	service  *service.Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new chat handler.
func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers chat routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)
	e.GET("/api/chat/ws", h.ChatWS)
}

// Chat relays a chat turn as an event stream.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	var in service.ChatInput
	if err := c.Bind(&in); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	in.SessionID = httpx.SessionID(c)

	events, err := h.service.Start(ctx, in)
	if err != nil {
		return httpx.Error(c, err)
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	enc := sse.NewEncoder(c.Response())
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			// The client is gone; cancelling stops the relay.
			h.logger.Debug("chat stream write failed", zap.Error(err))
			cancel()
		}
	}
	return nil
}
