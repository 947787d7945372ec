package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// ListImages returns the session images, newest first.
// GET /api/images
func (h *Handler) ListImages(c echo.Context) error {
	images, err := h.service.ListImages(c.Request().Context(), httpx.SessionID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	if images == nil {
		images = []domain.StoredImage{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"images": images,
	})
}

// SaveImage stores an image.
// POST /api/images
func (h *Handler) SaveImage(c echo.Context) error {
	var req struct {
		Data string `json:"data"`
	}
	if err := c.Bind(&req); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	image, err := h.service.SaveImage(c.Request().Context(), httpx.SessionID(c), req.Data)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusCreated, image)
}

// GetImage returns one image.
// GET /api/images/:id
func (h *Handler) GetImage(c echo.Context) error {
	image, err := h.service.GetImage(c.Request().Context(), httpx.SessionID(c), c.Param("id"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, image)
}

// DeleteImage removes one image.
// DELETE /api/images/:id
func (h *Handler) DeleteImage(c echo.Context) error {
	if err := h.service.DeleteImage(c.Request().Context(), httpx.SessionID(c), c.Param("id")); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ClearImages removes all session images.
// DELETE /api/images
func (h *Handler) ClearImages(c echo.Context) error {
	if err := h.service.ClearImages(c.Request().Context(), httpx.SessionID(c)); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
