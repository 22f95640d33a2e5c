package launchpad

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// NotFoundError is returned when Launchpad answers 404 for a person or team.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("~%s not found on Launchpad", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// APIError is any other non-200 answer from the API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("Launchpad API error (status %d) for %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("Launchpad API error (status %d) for %s", e.StatusCode, e.Endpoint)
}
