package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// ListBlueprints returns built-in and custom blueprints.
// GET /api/blueprints
func (h *Handler) ListBlueprints(c echo.Context) error {
	blueprints, err := h.service.ListBlueprints(c.Request().Context(), httpx.SessionID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"blueprints": blueprints,
	})
}

// CreateBlueprint adds a custom blueprint.
// POST /api/blueprints
func (h *Handler) CreateBlueprint(c echo.Context) error {
	var bp domain.Blueprint
	if err := c.Bind(&bp); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	created, err := h.service.CreateBlueprint(c.Request().Context(), httpx.SessionID(c), bp)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// DeleteBlueprint removes a custom blueprint.
// DELETE /api/blueprints/:id
func (h *Handler) DeleteBlueprint(c echo.Context) error {
	if err := h.service.DeleteBlueprint(c.Request().Context(), httpx.SessionID(c), c.Param("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
