package scheduler

import "errors"

var (
	// ErrJobAlreadyRunning is returned when another batch holds the run lock
	ErrJobAlreadyRunning = errors.New("job already running")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
