// Package v1 provides HTTP handlers for the currency chat agent.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmytrop/nbu-agent/internal/service"
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

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	// Chat API
	e.POST("/chat", h.Chat)
	e.GET("/chat/history/:session_id", h.GetSessionHistory)
	e.DELETE("/chat/history/:session_id", h.ClearSessionHistory)
	e.GET("/chat/sessions", h.ListSessions)

	// Direct NBU access
	e.GET("/currency-rates", h.GetCurrencyRates)
	e.POST("/test-tool", h.TestTool)
}

// Root reports that the service is up.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "AI Agent Backend is running",
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
