package llm

import (
	"errors"
	"fmt"
)

// Machine-readable error codes surfaced by the provider client.
const (
	ErrCodeMissingAPIKey    = "missing_api_key"
	ErrCodeTimeout          = "timeout"
	ErrCodeNetwork          = "network_error"
	ErrCodeInvalidJSON      = "invalid_json"
	ErrCodeInvalidSchema    = "invalid_schema"
	ErrCodeValidator        = "validator_error"
	ErrCodeMissingValidator = "missing_validator"
	ErrCodeProvider         = "provider_error"
)

// APIError is the error type returned for all provider-client failures.
// Status is the HTTP status code when one was received, 0 otherwise.
type APIError struct {
	Code      string
	Status    int
	RequestID string
	Message   string
	Err       error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm: %s (status=%d request_id=%s): %s", e.Code, e.Status, e.RequestID, e.Message)
	}
	return fmt.Sprintf("llm: %s (request_id=%s): %s", e.Code, e.RequestID, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err into an *APIError if it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
