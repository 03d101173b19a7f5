package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/shared"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// userContextKey is where the middleware stores the authenticated user.
const userContextKey = "auth.user"

// Middleware authenticates requests using the session cookie or a
// bearer token and stores the resolved user on the request context.
func Middleware(sessions *SessionManager, users *Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return &shared.UnauthorizedError{Message: "authentication required"}
			}

			userID, err := sessions.VerifyToken(token)
			if err != nil {
				return &shared.UnauthorizedError{Message: "session is invalid or expired"}
			}

			user, err := users.GetByID(c.Request().Context(), userID)
			if err != nil {
				return err
			}
			if user == nil {
				return &shared.UnauthorizedError{Message: "session is invalid or expired"}
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// CurrentUser returns the authenticated user set by Middleware. It
// panics when called outside an authenticated route, which is a wiring
// bug.
func CurrentUser(c echo.Context) *User {
	return c.Get(userContextKey).(*User)
}
