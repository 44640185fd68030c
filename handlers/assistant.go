package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/thunderbolt/assistant"
)

type askRequest struct {
	Question string `json:"question"`
}

// Ask relays a question to the assistant with the active profile and conditions.
// Provider failures come back as a 200 with failed=true and the fallback text.
func (h *Handler) Ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snap := h.store.Snapshot()
	reply, err := h.assistant.Answer(c.Request().Context(), assistant.PromptContext{
		Profile:     snap.Profile,
		Environment: snap.Environment,
		Question:    req.Question,
		User:        currentUser(c),
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, reply)
}

// AssistantHistory lists the caller's recent questions. ?limit= caps the count.
func (h *Handler) AssistantHistory(c echo.Context) error {
	if h.history == nil {
		return echo.NewHTTPError(http.StatusNotFound, "assistant history is not stored")
	}

	limit := 50
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
	}

	rows, err := h.history.Recent(c.Request().Context(), currentUser(c), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
