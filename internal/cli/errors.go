package cli

import "errors"

var (
	ErrNoCommand         = errors.New("no command provided")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrIDRequired        = errors.New("ticket ID is required")
	ErrSectionRequired   = errors.New("section name is required")
	ErrSectionNotFound   = errors.New("section not found")
	ErrUpdatesRequired   = errors.New("at least one key=value update is required")
	ErrInvalidAssignment = errors.New("expected key=value")
	ErrLintFailed        = errors.New("lint found errors")
)
