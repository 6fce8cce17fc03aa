package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// User input errors: blocked locally, no request is issued
	ErrNoFile       = fmt.Errorf("no file chosen")
	ErrEmptyMessage = fmt.Errorf("message is empty")
	ErrNoTargets    = fmt.Errorf("no targets selected")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrJobNotFound        = fmt.Errorf("job not found")

	// Orchestration errors
	ErrSendInFlight = fmt.Errorf("a send is already in flight")
	ErrPollFailed   = fmt.Errorf("progress poll failed")
	ErrNoPreview    = fmt.Errorf("no preview loaded")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
