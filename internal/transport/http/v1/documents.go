package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// GetDocument reads a server document.
// GET /api/specs?doc=<id>
func (h *Handler) GetDocument(c echo.Context) error {
	content, name, err := h.service.ReadDocument(c.QueryParam("doc"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"content": content,
		"name":    name,
	})
}

// PutDocument overwrites a server document.
// PUT /api/specs?doc=<id>
func (h *Handler) PutDocument(c echo.Context) error {
	id := c.QueryParam("doc")
	// Reject unknown ids before looking at the body.
	if !h.hasDocument(id) {
		return httpx.Error(c, errInvalidDocument)
	}

	content, err := decodeContent(c.Request().Body)
	if err != nil {
		return httpx.Error(c, err)
	}

	name, err := h.service.WriteDocument(id, content)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": name + " saved successfully",
	})
}

func (h *Handler) hasDocument(id string) bool {
	for _, d := range h.service.Documents() {
		if d.ID == id {
			return true
		}
	}
	return false
}
