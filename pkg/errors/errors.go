package errors

import (
	"errors"
	"fmt"
)

// AppError represents an application-level error with a code and optional cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	ErrCodeNotConnected    = "EXECUTOR_NOT_CONNECTED"
	ErrCodeTimeout         = "REQUEST_TIMEOUT"
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeUnavailable     = "CAPABILITY_UNAVAILABLE"
	ErrCodeDownloading     = "MODEL_DOWNLOADING"
	ErrCodeExecutionFailed = "CAPABILITY_EXECUTION_FAILED"
	ErrCodeUserInteraction = "USER_INTERACTION_REQUIRED"
	ErrCodeSessionCreate   = "SESSION_CREATE_FAILED"
	ErrCodeSessionDestroy  = "SESSION_DESTROY_FAILED"
	ErrCodeRelaySend       = "RELAY_SEND_FAILED"
	ErrCodeClientRequest   = "CLIENT_REQUEST_FAILED"
	ErrCodeConfig          = "CONFIG_INVALID"
)

// Code returns the error code of the outermost AppError in err's chain,
// or an empty string when there is none.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in err's chain carries the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}
