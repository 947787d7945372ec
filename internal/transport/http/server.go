// Package http provides the HTTP server implementation for the studio.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/vizstudio/internal/service"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/chat"
	"github.com/xiaot623/gogo/vizstudio/internal/transport/http/httpx"
	v1 "github.com/xiaot623/gogo/vizstudio/internal/transport/http/v1"
)

// NewServer creates and configures the studio HTTP server. staticDir, when
// set, is served at the root.
func NewServer(svc *service.Service, staticDir string, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(requestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(httpx.SessionMiddleware())

	// Handlers
	v1Handler := v1.NewHandler(svc)
	chatHandler := chat.NewHandler(svc, logger)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	chatHandler.RegisterRoutes(e)

	if staticDir != "" {
		e.Static("/", staticDir)
	}

	return e
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("session_id", httpx.SessionID(c)),
			}
			if v.Error != nil {
				logger.Error("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Info("request", fields...)
			return nil
		},
	})
}
