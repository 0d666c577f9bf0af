// Package http provides the HTTP server for the currency chat agent.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmytrop/nbu-agent/internal/service"
	v1 "github.com/dmytrop/nbu-agent/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler := v1.NewHandler(svc)
	handler.RegisterRoutes(e)

	return e
}
