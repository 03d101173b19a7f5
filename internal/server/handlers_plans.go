package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/auth"
	"ai-travel-planner/internal/plan"
	"ai-travel-planner/internal/shared"
)

type planResponse struct {
	ID            string `json:"id"`
	NoteID        string `json:"note_id"`
	Content       string `json:"content"`
	PromptVersion string `json:"prompt_version"`
	Feedback      *int   `json:"feedback"`
	CreatedAt     string `json:"created_at"`

	Destination string `json:"destination,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

func planToResponse(p *plan.Plan) planResponse {
	return planResponse{
		ID:            p.ID,
		NoteID:        p.NoteID,
		Content:       p.Content,
		PromptVersion: p.PromptVersion,
		Feedback:      p.Feedback,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleGeneratePlan(c echo.Context) error {
	user := auth.CurrentUser(c)
	noteID := c.Param("id")

	result, err := s.generator.GeneratePlan(c.Request().Context(), noteID, user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"id":                        result.Plan.ID,
		"note_id":                   result.Plan.NoteID,
		"content":                   result.Plan.Content,
		"prompt_version":            result.Plan.PromptVersion,
		"created_at":                result.Plan.CreatedAt.UTC().Format(time.RFC3339),
		"remaining_generations":     result.RemainingGenerations,
		"generation_limit_reset_at": result.LimitResetAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListPlans(c echo.Context) error {
	n, err := s.ownedNote(c)
	if err != nil {
		return err
	}

	plans, err := s.plans.ListByNote(c.Request().Context(), n.ID)
	if err != nil {
		return err
	}

	responses := make([]planResponse, 0, len(plans))
	for i := range plans {
		responses = append(responses, planToResponse(&plans[i]))
	}
	return c.JSON(http.StatusOK, map[string]any{"plans": responses})
}

func (s *Server) handleGetPlan(c echo.Context) error {
	wn, err := s.ownedPlan(c)
	if err != nil {
		return err
	}

	resp := planToResponse(&wn.Plan)
	resp.Destination = wn.Destination
	resp.StartDate = wn.StartDate.Format(dateLayout)
	resp.EndDate = wn.EndDate.Format(dateLayout)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeletePlan(c echo.Context) error {
	wn, err := s.ownedPlan(c)
	if err != nil {
		return err
	}
	if err := s.plans.Delete(c.Request().Context(), wn.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type feedbackRequest struct {
	Feedback int `json:"feedback"`
}

func (s *Server) handlePlanFeedback(c echo.Context) error {
	wn, err := s.ownedPlan(c)
	if err != nil {
		return err
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return &shared.ValidationError{Field: "body", Reason: "request body must be valid JSON"}
	}
	if req.Feedback != plan.FeedbackPositive && req.Feedback != plan.FeedbackNegative {
		return &shared.ValidationError{Field: "feedback", Reason: "feedback must be 1 or -1"}
	}

	if err := s.plans.SetFeedback(c.Request().Context(), wn.ID, req.Feedback); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"id":       wn.ID,
		"feedback": req.Feedback,
	})
}

// ownedPlan loads the plan in the :id param and hides plans belonging
// to other users behind a not-found answer.
func (s *Server) ownedPlan(c echo.Context) (*plan.WithNote, error) {
	user := auth.CurrentUser(c)
	id := c.Param("id")

	wn, err := s.plans.GetWithNote(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if wn == nil || wn.NoteUserID != user.ID {
		return nil, &shared.NotFoundError{Resource: "plan", ID: id}
	}
	return wn, nil
}
