// Package httpx holds request helpers shared by the HTTP handlers.
package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/gogo/vizstudio/internal/service"
)

const (
	// SessionHeader carries the caller's session id.
	SessionHeader = "X-Session-ID"
	// SessionQueryParam is the fallback when the header is absent.
	SessionQueryParam = "session"
	// DefaultSession is used when the caller names no session.
	DefaultSession = "default"

	sessionKey = "session_id"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionMiddleware stores the caller's session id on the context.
func SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(SessionHeader)
			if id == "" {
				id = c.QueryParam(SessionQueryParam)
			}
			if id == "" {
				id = DefaultSession
			}
			c.Set(sessionKey, id)
			return next(c)
		}
	}
}

// SessionID returns the session id set by SessionMiddleware.
func SessionID(c echo.Context) string {
	if id, ok := c.Get(sessionKey).(string); ok && id != "" {
		return id
	}
	if id := c.Request().Header.Get(SessionHeader); id != "" {
		return id
	}
	if id := c.QueryParam(SessionQueryParam); id != "" {
		return id
	}
	return DefaultSession
}

// Error writes err as {"error": message} with its derived status.
func Error(c echo.Context, err error) error {
	return c.JSON(service.StatusCode(err), ErrorResponse{Error: err.Error()})
}

// BadRequest writes a 400 with msg.
func BadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
