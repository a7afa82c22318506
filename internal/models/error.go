package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
	ErrValidation     = errors.New("validation failed")

	// Login throttling
	ErrAccountLocked = errors.New("account is temporarily locked")

	// Wizard flow errors
	ErrMissingPrerequisite = errors.New("wizard step is missing its parent record")
	ErrStepOutOfOrder      = errors.New("wizard step submitted out of order")
	ErrUnknownStep         = errors.New("unknown wizard step")
)
