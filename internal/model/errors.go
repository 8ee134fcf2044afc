package model

import "errors"

var (
	// ErrAlreadyInstalled is returned when value nodes are installed into a
	// model a second time, e.g. when two simulators share one model.
	ErrAlreadyInstalled = errors.New("model already has value nodes installed")
	// ErrInvalidConnection covers connections that can never be simulated:
	// nil endpoints, constants used as destinations, endpoints outside the
	// elaborated tree.
	ErrInvalidConnection = errors.New("invalid connection")
	// ErrInvalidDeclaration covers bad names, widths, and duplicates.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)
