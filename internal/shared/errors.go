package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// NotFoundError reports an absent note, profile, plan or user.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// ForbiddenError reports an ownership violation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return "you do not have permission to access this resource"
	}
	return e.Message
}

// UnauthorizedError reports a request with no resolvable user identity.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "you must be authenticated to perform this action"
	}
	return e.Message
}

// IncompleteProfileError lists the profile fields still required before
// plan generation is allowed.
type IncompleteProfileError struct {
	MissingFields []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("user profile is incomplete, missing required fields: %s",
		strings.Join(e.MissingFields, ", "))
}

// GenerationLimitError reports an exhausted monthly generation quota.
type GenerationLimitError struct {
	Limit   int
	ResetAt time.Time
}

func (e *GenerationLimitError) Error() string {
	return fmt.Sprintf("plan generation limit of %d reached, try again after %s",
		e.Limit, e.ResetAt.Format(time.RFC3339))
}

// AIGenerationError wraps a provider or persistence failure that occurred
// after eligibility checks passed.
type AIGenerationError struct {
	Message string
	Err     error
}

func (e *AIGenerationError) Error() string {
	if e.Message == "" {
		return "failed to generate travel plan"
	}
	return e.Message
}

func (e *AIGenerationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a field-level input failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Reason)
}

// IsBusinessError reports whether err is one of the typed errors above,
// i.e. safe to surface to API clients as-is.
func IsBusinessError(err error) bool {
	var (
		notFound     *NotFoundError
		forbidden    *ForbiddenError
		unauthorized *UnauthorizedError
		incomplete   *IncompleteProfileError
		limit        *GenerationLimitError
		validation   *ValidationError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &forbidden) ||
		errors.As(err, &unauthorized) ||
		errors.As(err, &incomplete) ||
		errors.As(err, &limit) ||
		errors.As(err, &validation)
}
