package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// ListContexts resolves every context document for the session.
// GET /api/contexts
func (h *Handler) ListContexts(c echo.Context) error {
	docs := h.service.Resolver().ResolveAll(c.Request().Context(), httpx.SessionID(c))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"contexts": docs,
	})
}

// GetContext resolves one context document.
// GET /api/contexts/:key
func (h *Handler) GetContext(c echo.Context) error {
	key, err := domain.ParseContextKey(c.Param("key"))
	if err != nil {
		return httpx.Error(c, err)
	}
	doc := h.service.Resolver().Resolve(c.Request().Context(), httpx.SessionID(c), key)
	return c.JSON(http.StatusOK, doc)
}

// SaveContext stores a session override.
// PUT /api/contexts/:key
func (h *Handler) SaveContext(c echo.Context) error {
	key, err := domain.ParseContextKey(c.Param("key"))
	if err != nil {
		return httpx.Error(c, err)
	}
	content, err := decodeContent(c.Request().Body)
	if err != nil {
		return httpx.Error(c, err)
	}

	ctx := c.Request().Context()
	if err := h.service.Resolver().Save(ctx, httpx.SessionID(c), key, content); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, domain.ContextDocument{Key: key, Content: content, Origin: domain.OriginOverride})
}

// ResetContext drops the override and returns the re-resolved document.
// DELETE /api/contexts/:key
func (h *Handler) ResetContext(c echo.Context) error {
	key, err := domain.ParseContextKey(c.Param("key"))
	if err != nil {
		return httpx.Error(c, err)
	}
	doc, err := h.service.Resolver().Reset(c.Request().Context(), httpx.SessionID(c), key)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, doc)
}
