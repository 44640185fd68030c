package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/padraicbc/thunderbolt/ballistics"
)

// defaultRange is the range shown before the user picks one.
const defaultRange = 500

type solutionResponse struct {
	ProfileID string              `json:"profileId"`
	Solution  ballistics.Solution `json:"solution"`
	Air       ballistics.AirData  `json:"air"`
}

type solveRequest struct {
	Range       float64                       `json:"range"`
	ProfileID   string                        `json:"profileId"`
	Environment *ballistics.EnvironmentalData `json:"environment"`
}

type trajectoryResponse struct {
	ProfileID     string                `json:"profileId"`
	SelectedRange int                   `json:"selectedRange"`
	Rows          []ballistics.Solution `json:"rows"`
}

func (h *Handler) GetEnvironment(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Environment())
}

// PutEnvironment replaces the current conditions.
func (h *Handler) PutEnvironment(c echo.Context) error {
	var env ballistics.EnvironmentalData
	if err := c.Bind(&env); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.store.SetEnvironment(env)
	return c.JSON(http.StatusOK, env)
}

// GetSolution solves ?range= (default 500 yd) for the active profile and current conditions.
func (h *Handler) GetSolution(c echo.Context) error {
	rng := float64(defaultRange)
	if err := echo.QueryParamsBinder(c).Float64("range", &rng).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "range must be a number")
	}

	snap := h.store.Snapshot()
	return solve(c, rng, snap.Profile, snap.Environment)
}

// PostSolution solves with optional profile and environment overrides.
func (h *Handler) PostSolution(c echo.Context) error {
	var req solveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	snap := h.store.Snapshot()
	profile, env := snap.Profile, snap.Environment
	if id := strings.TrimSpace(req.ProfileID); id != "" {
		p, err := h.store.Get(id)
		if err != nil {
			return domainError(err)
		}
		profile = p
	}
	if req.Environment != nil {
		env = *req.Environment
	}
	return solve(c, req.Range, profile, env)
}

// Trajectory returns the 100-1000 yd table for the active profile. When ?range= is
// given, selectedRange is the row the range rounds to.
func (h *Handler) Trajectory(c echo.Context) error {
	rng := float64(defaultRange)
	if err := echo.QueryParamsBinder(c).Float64("range", &rng).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "range must be a number")
	}

	snap := h.store.Snapshot()
	rows, err := ballistics.Sweep(snap.Profile, snap.Environment)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, trajectoryResponse{
		ProfileID:     snap.Profile.ID,
		SelectedRange: ballistics.NearestTableRange(rng),
		Rows:          rows,
	})
}

func solve(c echo.Context, rng float64, p ballistics.RifleProfile, env ballistics.EnvironmentalData) error {
	s, err := ballistics.Solve(rng, p, env)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, solutionResponse{
		ProfileID: p.ID,
		Solution:  s,
		Air:       ballistics.Atmosphere(p, env),
	})
}
