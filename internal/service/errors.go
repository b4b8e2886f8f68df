package service

import "errors"

// Business rule violations. Everything else a service returns is unexpected
// (storage or signing failures).
var (
	ErrAlreadyExists      = errors.New("organization already exists")
	ErrNotFound           = errors.New("organization not found")
	ErrNameConflict       = errors.New("organization name already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOrgNotFound        = errors.New("organization not found for this admin")
	ErrInvalidInput       = errors.New("invalid input")
)

// Outcome labels an operation result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNameConflict):
		return "name_conflict"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrOrgNotFound):
		return "org_not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
