package core

import "errors"

// Error codes for domain errors.
const (
	ErrCodeProtocolFraming = "protocol_framing"
	ErrCodeUnknownCommand  = "unknown_command"
	ErrCodeAuthRejected    = "auth_rejected"
	ErrCodeInvalidTarget   = "invalid_target"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodeNotAuthorized   = "not_authorized"
	ErrCodeServerFull      = "server_full"
	ErrCodeBadRequest      = "bad_request"
)

var (
	ErrUnknownArea      = coreError(ErrCodeInvalidTarget, "That area does not exist.")
	ErrUnknownClient    = coreError(ErrCodeInvalidTarget, "That client does not exist.")
	ErrInvalidCharacter = coreError(ErrCodeInvalidTarget, "That character does not exist.")
	ErrCharacterTaken   = coreError(ErrCodeInvalidTarget, "That character is already taken in this area.")
	ErrUnknownMusic     = coreError(ErrCodeInvalidTarget, "That track does not exist.")
	ErrAuthRejected     = coreError(ErrCodeAuthRejected, "Invalid password.")
	ErrRateLimited      = coreError(ErrCodeRateLimited, "You are sending messages too fast.")
	ErrNotAuthorized    = coreError(ErrCodeNotAuthorized, "You must be authorized to do that.")
	ErrNoLights         = coreError(ErrCodeBadRequest, "This area has no lights to toggle.")
	ErrInvalidName      = coreError(ErrCodeBadRequest, "You must enter a name.")
	ErrServerFull       = coreError(ErrCodeServerFull, "The server is full.")
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

// CodeOf returns the code of the CoreError wrapped by err, or "" if none.
func CodeOf(err error) string {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
