package structs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrFeedbackFinal = errors.New("feedback already recorded")
)

const (
	KindBadInput = "bad_input"
	KindNotFound = "not_found"
	KindConflict = "conflict"
	KindInternal = "internal"
)

// BadInput wraps ErrInvalidInput with a message about the offending field.
func BadInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func NotFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

// ErrorKind classifies err for callers that report it across a transport.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindBadInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrFeedbackFinal):
		return KindConflict
	default:
		return KindInternal
	}
}

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}
