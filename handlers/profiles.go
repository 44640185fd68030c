package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/padraicbc/thunderbolt/ballistics"
	"github.com/padraicbc/thunderbolt/catalog"
)

type profilesResponse struct {
	ActiveID string                    `json:"activeId"`
	Profiles []ballistics.RifleProfile `json:"profiles"`
}

type setActiveRequest struct {
	ID string `json:"id"`
}

// Variants lists the selectable rifle models.
func (h *Handler) Variants(c echo.Context) error {
	return c.JSON(http.StatusOK, ballistics.Variants())
}

// Scopes lists the optic catalogue.
func (h *Handler) Scopes(c echo.Context) error {
	return c.JSON(http.StatusOK, catalog.Scopes())
}

// ListProfiles returns every profile and the active id.
func (h *Handler) ListProfiles(c echo.Context) error {
	return c.JSON(http.StatusOK, profilesResponse{
		ActiveID: h.store.ActiveID(),
		Profiles: h.store.List(),
	})
}

func (h *Handler) GetProfile(c echo.Context) error {
	p, err := h.store.Get(c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, p)
}

// CreateProfile adds a profile. The id is derived from the name when omitted.
func (h *Handler) CreateProfile(c echo.Context) error {
	var p ballistics.RifleProfile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	trimProfile(&p)

	added, err := h.store.Add(p)
	if err != nil {
		return domainError(err)
	}
	zap.L().Info("profile added", zap.String("id", added.ID), zap.String("user", currentUser(c)))
	return c.JSON(http.StatusCreated, added)
}

// UpdateProfile replaces the whole profile named in the path.
func (h *Handler) UpdateProfile(c echo.Context) error {
	id := c.Param("id")

	var p ballistics.RifleProfile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	trimProfile(&p)
	if p.ID == "" {
		p.ID = id
	}
	if p.ID != id {
		return echo.NewHTTPError(http.StatusBadRequest, "profile id does not match path")
	}

	if err := h.store.Commit(p); err != nil {
		return domainError(err)
	}
	zap.L().Info("profile saved", zap.String("id", p.ID), zap.String("user", currentUser(c)))
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ActiveProfile(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Active())
}

func (h *Handler) SetActiveProfile(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.store.SetActive(strings.TrimSpace(req.ID)); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, h.store.Active())
}

func trimProfile(p *ballistics.RifleProfile) {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.ScopeModel = strings.TrimSpace(p.ScopeModel)
	p.ReticleType = strings.TrimSpace(p.ReticleType)
	p.BCType = ballistics.DragModel(strings.ToUpper(strings.TrimSpace(string(p.BCType))))
}
