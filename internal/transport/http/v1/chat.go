package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmytrop/nbu-agent/internal/domain"
)

// Chat runs one conversational turn.
// POST /chat
func (h *Handler) Chat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	result, err := h.service.Chat(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{
		Response:  result.Response,
		SessionID: result.SessionID,
		ToolUsed:  result.ToolUsed,
	})
}

// GetSessionHistory returns the stored turns of a session.
// GET /chat/history/:session_id
func (h *Handler) GetSessionHistory(c echo.Context) error {
	sessionID := c.Param("session_id")

	history, err := h.service.History(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":    sessionID,
		"history":       history,
		"message_count": len(history),
	})
}

// ClearSessionHistory deletes a session and its turns.
// DELETE /chat/history/:session_id
func (h *Handler) ClearSessionHistory(c echo.Context) error {
	sessionID := c.Param("session_id")

	if err := h.service.ClearHistory(c.Request().Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":    "history cleared",
		"session_id": sessionID,
	})
}

// ListSessions summarizes all live sessions.
// GET /chat/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	sessions, err := h.service.Sessions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_sessions": len(sessions),
		"sessions":        sessions,
	})
}
