// Package v1 provides the studio's JSON API handlers.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/generate", h.Generate)

	// Server documents
	e.GET("/api/specs", h.GetDocument)
	e.PUT("/api/specs", h.PutDocument)

	// Context documents
	e.GET("/api/contexts", h.ListContexts)
	e.GET("/api/contexts/:key", h.GetContext)
	e.PUT("/api/contexts/:key", h.SaveContext)
	e.DELETE("/api/contexts/:key", h.ResetContext)

	// Studio state
	e.GET("/api/state", h.GetState)
	e.PUT("/api/state", h.PutState)
	e.DELETE("/api/state", h.DeleteState)

	// Image store
	e.GET("/api/images", h.ListImages)
	e.POST("/api/images", h.SaveImage)
	e.DELETE("/api/images", h.ClearImages)
	e.GET("/api/images/:id", h.GetImage)
	e.DELETE("/api/images/:id", h.DeleteImage)

	// Blueprints
	e.GET("/api/blueprints", h.ListBlueprints)
	e.POST("/api/blueprints", h.CreateBlueprint)
	e.DELETE("/api/blueprints/:id", h.DeleteBlueprint)

	e.GET("/api/calls", h.ListCalls)

	e.GET("/api/prompt/initial", h.InitialMessage)
	e.POST("/api/prompt/extract", h.ExtractPrompt)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
