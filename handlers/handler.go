package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/thunderbolt/assistant"
	"github.com/padraicbc/thunderbolt/ballistics"
	"github.com/padraicbc/thunderbolt/models"
	"github.com/padraicbc/thunderbolt/session"
)

// Users looks up API users for sign in.
type Users interface {
	ByUsername(ctx context.Context, username string) (*models.User, error)
}

// History lists past assistant exchanges.
type History interface {
	Recent(ctx context.Context, user string, limit int) ([]models.AssistantQuery, error)
}

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	users     Users
	history   History
	store     *session.Store
	assistant *assistant.Service
	JWTKey    []byte
}

// New creates a Handler. history may be nil, which disables the history endpoint.
func New(users Users, history History, store *session.Store, svc *assistant.Service, jwtKey []byte) *Handler {
	return &Handler{
		users:     users,
		history:   history,
		store:     store,
		assistant: svc,
		JWTKey:    jwtKey,
	}
}

// Register mounts every route on e. Everything except sign in and health needs a token.
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.POST("/api/signin", h.Signin)
	e.GET("/api/health", h.Health)

	api := e.Group("/api", auth)
	api.GET("/catalog/variants", h.Variants)
	api.GET("/catalog/scopes", h.Scopes)

	api.GET("/profiles", h.ListProfiles)
	api.POST("/profiles", h.CreateProfile)
	api.GET("/profiles/active", h.ActiveProfile)
	api.PUT("/profiles/active", h.SetActiveProfile)
	api.GET("/profiles/:id", h.GetProfile)
	api.PUT("/profiles/:id", h.UpdateProfile)

	api.GET("/environment", h.GetEnvironment)
	api.PUT("/environment", h.PutEnvironment)

	api.GET("/solution", h.GetSolution)
	api.POST("/solution", h.PostSolution)
	api.GET("/trajectory", h.Trajectory)

	api.POST("/assistant", h.Ask)
	api.GET("/assistant/history", h.AssistantHistory)
}

// Health reports liveness and whether an assistant provider is configured.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"assistant": h.assistant.Enabled(),
	})
}

// domainError maps package sentinels onto HTTP status codes.
func domainError(err error) error {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrDuplicate):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ballistics.ErrInvalidProfile),
		errors.Is(err, ballistics.ErrInvalidInput),
		errors.Is(err, assistant.ErrEmptyQuestion):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func currentUser(c echo.Context) string {
	u, _ := c.Get("username").(string)
	return u
}
