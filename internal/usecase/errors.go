package usecase

import (
	"errors"
	"fmt"
)

// ErrorCode groups failures by who is at fault and how a caller should react.
type ErrorCode string

const (
	ErrorInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrorInvalidQuestion ErrorCode = "INVALID_QUESTION"
	ErrorRateLimited     ErrorCode = "RATE_LIMITED"
	ErrorUpstream        ErrorCode = "UPSTREAM_ERROR"
)

// Reasons with a fixed spelling. Upstream failures use "<stage>_rate_limited",
// "<stage>_timeout" or "<stage>_error" where stage is moderation or completion.
const (
	ReasonEmptyQuestion     = "empty_question"
	ReasonQuestionTooLong   = "question_too_long"
	ReasonModerationFlagged = "moderation_flagged"
	ReasonEmptyCompletion   = "empty_completion"
)

// Error is returned by AskService for every failed ask. Reason is a stable
// snake_case token suitable for logs and for picking a user-facing message.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ucErr *Error
	if !errors.As(err, &ucErr) {
		return nil, false
	}
	return ucErr, true
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
