package models

import "errors"

// Error taxonomy shared by the directory and the trip store. Call sites
// wrap these with fmt.Errorf("%w: ...") and callers match with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrValidation         = errors.New("validation failed")
	ErrProtectedAccount   = errors.New("account is protected")
)
