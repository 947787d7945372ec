package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/domain"
	"github.com/xiaot623/gogo/vizstudio/internal/prompt"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
)

// GetState returns the session snapshot.
// GET /api/state
func (h *Handler) GetState(c echo.Context) error {
	state, err := h.service.LoadState(c.Request().Context(), httpx.SessionID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// PutState replaces the session snapshot.
// PUT /api/state
func (h *Handler) PutState(c echo.Context) error {
	var state domain.StudioState
	if err := c.Bind(&state); err != nil {
		return httpx.BadRequest(c, "Invalid request body")
	}
	if err := h.service.SaveState(c.Request().Context(), httpx.SessionID(c), &state); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(http.StatusOK, &state)
}

// DeleteState clears the session snapshot.
// DELETE /api/state
func (h *Handler) DeleteState(c echo.Context) error {
	if err := h.service.ClearState(c.Request().Context(), httpx.SessionID(c)); err != nil {
		return httpx.Error(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListCalls returns recent provider calls.
// GET /api/calls
func (h *Handler) ListCalls(c echo.Context) error {
	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	calls, err := h.service.ListCalls(c.Request().Context(), httpx.SessionID(c), limit)
	if err != nil {
		return httpx.Error(c, err)
	}
	if calls == nil {
		calls = []domain.CallRecord{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"calls": calls,
	})
}

// InitialMessage returns the assistant greeting of a fresh conversation.
// GET /api/prompt/initial
func (h *Handler) InitialMessage(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Message{
		Role:    domain.RoleAssistant,
		Content: prompt.InitialAssistantMessage,
	})
}

// ExtractPrompt pulls the marked image prompt out of an assistant reply.
// POST /api/prompt/extract
func (h *Handler) ExtractPrompt(c echo.Context) error {
	content, err := decodeContent(c.Request().Body)
	if err != nil {
		return httpx.Error(c, err)
	}
	p, found := prompt.ExtractPrompt(content)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"prompt": p,
		"found":  found,
	})
}
