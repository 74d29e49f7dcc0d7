package service

import (
	"context"
	"errors"
)

// ErrorCode tags every service failure so handlers can map it to an HTTP
// status and callers can branch without string matching.
type ErrorCode string

const (
	CodeValidation        ErrorCode = "validation_error"
	CodeAuth              ErrorCode = "auth_error"
	CodeNotConfigured     ErrorCode = "not_configured"
	CodeNotFound          ErrorCode = "not_found"
	CodeSignatureMismatch ErrorCode = "signature_mismatch"
	CodeDependencyTimeout ErrorCode = "dependency_timeout"
	CodePersistence       ErrorCode = "persistence_error"
	CodeGateway           ErrorCode = "gateway_error"
)

// Error is the failure half of every service result: a typed code plus a
// human-readable reason. It never crosses the HTTP boundary unhandled.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string { return e.Message }

// dependencyError classifies a store/gateway failure: deadline overruns get
// the timeout code, everything else the given fallback code.
func dependencyError(err error, fallback ErrorCode, message string) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Code: CodeDependencyTimeout, Message: message + ": operation timed out"}
	}
	return &Error{Code: fallback, Message: message}
}
