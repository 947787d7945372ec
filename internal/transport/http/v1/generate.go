package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/service"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// Generate creates an image.
// POST /api/generate
func (h *Handler) Generate(c echo.Context) error {
	var in service.GenerateInput
	if err := c.Bind(&in); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	in.SessionID = httpx.SessionID(c)

	res, err := h.service.Generate(c.Request().Context(), in)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
