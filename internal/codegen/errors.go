package codegen

import (
	"errors"
	"fmt"
)

var ErrNoTargets = errors.New("at least one of backend or frontend must be requested")

// RemoteServiceError is a non-success answer from an upstream HTTP service.
type RemoteServiceError struct {
	// Service defaults to the code generation service.
	Service    string
	Op         string
	Body       string
	StatusCode int
}

func (e *RemoteServiceError) Error() string {
	service := e.Service
	if service == "" {
		service = "code generation service"
	}
	return fmt.Sprintf("%s: %s responded with status %d. Details: %s", e.Op, service, e.StatusCode, e.Body)
}
