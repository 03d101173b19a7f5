package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/auth"
	"ai-travel-planner/internal/profile"
	"ai-travel-planner/internal/shared"
)

type profileResponse struct {
	TravelStyle            *string  `json:"travel_style"`
	Interests              []string `json:"interests"`
	OtherInterests         *string  `json:"other_interests"`
	DailyBudget            *float64 `json:"daily_budget"`
	GenerationCount        int      `json:"generation_count"`
	GenerationLimitResetAt string   `json:"generation_limit_reset_at"`
	Complete               bool     `json:"complete"`
}

func profileToResponse(p *profile.Profile) profileResponse {
	return profileResponse{
		TravelStyle:            p.TravelStyle,
		Interests:              p.Interests,
		OtherInterests:         p.OtherInterests,
		DailyBudget:            p.DailyBudget,
		GenerationCount:        p.GenerationCount,
		GenerationLimitResetAt: p.GenerationLimitResetAt.UTC().Format(time.RFC3339),
		Complete:               p.IsComplete(),
	}
}

func (s *Server) handleGetProfile(c echo.Context) error {
	user := auth.CurrentUser(c)

	p, err := s.profiles.Get(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	if p == nil {
		return &shared.NotFoundError{Resource: "profile", ID: user.ID}
	}
	return c.JSON(http.StatusOK, profileToResponse(p))
}

func (s *Server) handleUpsertProfile(c echo.Context) error {
	user := auth.CurrentUser(c)

	var in profile.Input
	if err := c.Bind(&in); err != nil {
		return &shared.ValidationError{Field: "body", Reason: "request body must be valid JSON"}
	}
	if err := in.Validate(); err != nil {
		return err
	}

	p, err := s.profiles.Upsert(c.Request().Context(), user.ID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileToResponse(p))
}
