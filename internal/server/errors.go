package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"ai-travel-planner/internal/shared"
)

// Stable error codes returned in API error bodies.
const (
	codeNotFound          = "NOT_FOUND"
	codeForbidden         = "FORBIDDEN"
	codeUnauthorized      = "UNAUTHORIZED"
	codeIncompleteProfile = "INCOMPLETE_PROFILE"
	codeLimitExceeded     = "GENERATION_LIMIT_EXCEEDED"
	codeGenerationFailed  = "AI_GENERATION_FAILED"
	codeValidation        = "VALIDATION_ERROR"
	codeInternal          = "INTERNAL_ERROR"
)

// handleError converts any error escaping a handler into the API error
// body. Unexpected errors are logged in full and answered with a
// generic message so internals never reach clients.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[ERROR] %s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}

	if writeErr := c.JSON(status, body); writeErr != nil {
		log.Printf("[ERROR] failed to write error response: %v", writeErr)
	}
}

func mapError(err error) (int, map[string]any) {
	var notFound *shared.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound, errorBody(notFound.Error(), codeNotFound)
	}

	var forbidden *shared.ForbiddenError
	if errors.As(err, &forbidden) {
		return http.StatusForbidden, errorBody(forbidden.Message, codeForbidden)
	}

	var unauthorized *shared.UnauthorizedError
	if errors.As(err, &unauthorized) {
		return http.StatusUnauthorized, errorBody(unauthorized.Message, codeUnauthorized)
	}

	var incomplete *shared.IncompleteProfileError
	if errors.As(err, &incomplete) {
		body := errorBody("profile is incomplete", codeIncompleteProfile)
		body["required_fields"] = incomplete.MissingFields
		return http.StatusBadRequest, body
	}

	var limit *shared.GenerationLimitError
	if errors.As(err, &limit) {
		body := errorBody("generation limit exceeded", codeLimitExceeded)
		body["limit"] = limit.Limit
		body["reset_at"] = limit.ResetAt.UTC().Format(time.RFC3339)
		return http.StatusTooManyRequests, body
	}

	var generation *shared.AIGenerationError
	if errors.As(err, &generation) {
		return http.StatusInternalServerError, errorBody(generation.Message, codeGenerationFailed)
	}

	var validation *shared.ValidationError
	if errors.As(err, &validation) {
		body := errorBody(validation.Reason, codeValidation)
		body["field"] = validation.Field
		return http.StatusBadRequest, body
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return httpErr.Code, errorBody("resource not found", codeNotFound)
		case http.StatusMethodNotAllowed:
			return httpErr.Code, errorBody("method not allowed", "METHOD_NOT_ALLOWED")
		case http.StatusBadRequest:
			return httpErr.Code, errorBody("malformed request", codeValidation)
		}
	}

	return http.StatusInternalServerError, errorBody("an unexpected error occurred", codeInternal)
}

func errorBody(message, code string) map[string]any {
	return map[string]any{
		"error": message,
		"code":  code,
	}
}
