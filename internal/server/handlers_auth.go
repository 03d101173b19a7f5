package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/auth"
	"ai-travel-planner/internal/shared"
)

const sessionCookieMaxAge = 7 * 24 * time.Hour

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return &shared.ValidationError{Field: "body", Reason: "request body must be valid JSON"}
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return err
	}

	user, err := s.users.Create(c.Request().Context(), creds.NormalizedEmail(), hash)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return &shared.ValidationError{Field: "email", Reason: "email is already registered"}
		}
		return err
	}

	if err := s.startSession(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogin(c echo.Context) error {
	var creds auth.Credentials
	if err := c.Bind(&creds); err != nil {
		return &shared.ValidationError{Field: "body", Reason: "request body must be valid JSON"}
	}

	user, err := s.users.GetByEmail(c.Request().Context(), creds.NormalizedEmail())
	if err != nil {
		return err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, creds.Password) {
		return &shared.UnauthorizedError{Message: "invalid email or password"}
	}

	if err := s.startSession(c, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

func (s *Server) handleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) startSession(c echo.Context, userID string) error {
	token, err := s.sessions.IssueToken(userID)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
