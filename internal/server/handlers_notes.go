package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/auth"
	"ai-travel-planner/internal/note"
	"ai-travel-planner/internal/shared"
)

const dateLayout = "2006-01-02"

type noteResponse struct {
	ID              string   `json:"id"`
	Destination     string   `json:"destination"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	TotalBudget     *float64 `json:"total_budget"`
	AdditionalNotes *string  `json:"additional_notes"`
	PlanCount       *int     `json:"plan_count,omitempty"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func noteToResponse(n *note.Note) noteResponse {
	return noteResponse{
		ID:              n.ID,
		Destination:     n.Destination,
		StartDate:       n.StartDate.Format(dateLayout),
		EndDate:         n.EndDate.Format(dateLayout),
		TotalBudget:     n.TotalBudget,
		AdditionalNotes: n.AdditionalNotes,
		CreatedAt:       n.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       n.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateNote(c echo.Context) error {
	user := auth.CurrentUser(c)

	var in note.Input
	if err := c.Bind(&in); err != nil {
		return &shared.ValidationError{Field: "body", Reason: "request body must be valid JSON"}
	}
	start, end, err := in.Validate()
	if err != nil {
		return err
	}

	n := &note.Note{
		UserID:          user.ID,
		Destination:     in.Destination,
		StartDate:       start,
		EndDate:         end,
		TotalBudget:     in.TotalBudget,
		AdditionalNotes: in.AdditionalNotes,
	}
	if err := s.notes.Create(c.Request().Context(), n); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, noteToResponse(n))
}

func (s *Server) handleListNotes(c echo.Context) error {
	user := auth.CurrentUser(c)

	limit := intQuery(c, "limit", 0)
	offset := intQuery(c, "offset", 0)
	params, err := note.ParseListParams(c.QueryParam("sort"), limit, offset)
	if err != nil {
		return err
	}

	items, total, err := s.notes.ListByUser(c.Request().Context(), user.ID, params)
	if err != nil {
		return err
	}

	notes := make([]noteResponse, 0, len(items))
	for i := range items {
		resp := noteToResponse(&items[i].Note)
		count := items[i].PlanCount
		resp.PlanCount = &count
		notes = append(notes, resp)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"notes": notes,
		"total": total,
	})
}

func (s *Server) handleGetNote(c echo.Context) error {
	n, err := s.ownedNote(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, noteToResponse(n))
}

func (s *Server) handleUpdateNote(c echo.Context) error {
	n, err := s.ownedNote(c)
	if err != nil {
		return err
	}

	var in note.Input
	if err := c.Bind(&in); err != nil {
		return &shared.ValidationError{Field: "body", Reason: "request body must be valid JSON"}
	}
	start, end, err := in.Validate()
	if err != nil {
		return err
	}

	n.Destination = in.Destination
	n.StartDate = start
	n.EndDate = end
	n.TotalBudget = in.TotalBudget
	n.AdditionalNotes = in.AdditionalNotes
	if err := s.notes.Update(c.Request().Context(), n); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, noteToResponse(n))
}

func (s *Server) handleDeleteNote(c echo.Context) error {
	n, err := s.ownedNote(c)
	if err != nil {
		return err
	}
	if err := s.notes.Delete(c.Request().Context(), n.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ownedNote loads the note in the :id param and hides notes belonging
// to other users behind a not-found answer.
func (s *Server) ownedNote(c echo.Context) (*note.Note, error) {
	user := auth.CurrentUser(c)
	id := c.Param("id")

	n, err := s.notes.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID != user.ID {
		return nil, &shared.NotFoundError{Resource: "note", ID: id}
	}
	return n, nil
}

func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
