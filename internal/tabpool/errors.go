package tabpool

import (
	"errors"
	"fmt"
)

const (
	CodeLaunchFailure     = "LAUNCH_FAILURE"
	CodePoolExhausted     = "POOL_EXHAUSTED"
	CodeNavigationFailure = "NAVIGATION_FAILURE"
	CodeSessionClosed     = "SESSION_CLOSED"
)

// CodedError is a typed error used for stable caller and API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code string) bool {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// Fatal reports whether err means the shared session itself is unusable.
// Callers abort the run on fatal errors and skip the request otherwise.
func Fatal(err error) bool {
	return IsCode(err, CodeLaunchFailure) || IsCode(err, CodeSessionClosed)
}
