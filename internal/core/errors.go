package core

// Error codes for domain errors.
const (
	ErrCodeValidation    = "validation"
	ErrCodeConflict      = "conflict"
	ErrCodeNotFound      = "not_found"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotRegistered = "not_registered"
	ErrCodeNotInRoom     = "not_in_room"

	// ErrCodeAlreadyInRoom is informational: a repeated join is a no-op,
	// not a failure, but the router must know not to re-broadcast.
	ErrCodeAlreadyInRoom = "already_in_room"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
