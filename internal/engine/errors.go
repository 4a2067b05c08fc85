package engine

import "fmt"

// Error codes for link and message handling. All are non-fatal; the bridge
// logs them and moves on.
const (
	ErrCodeInvalidPort   = "INVALID_PORT"
	ErrCodeBindFailed    = "BIND_ERROR"
	ErrCodeMalformed     = "MALFORMED_MESSAGE"
	ErrCodeUnrecognized  = "UNRECOGNIZED_MESSAGE"
	ErrCodeNotConnected  = "NOT_CONNECTED"
	ErrCodeResolveFailed = "RESOLVE_ERROR"
)

// Error is an engine-link error with a code.
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
