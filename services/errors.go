package services

import (
	"errors"
	"fmt"
)

// ErrorType classifies a DomainError. Handlers pick the HTTP status from it.
type ErrorType string

const (
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeExternal   ErrorType = "external"
)

// DomainError carries a client facing Message alongside the underlying cause.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is matches another DomainError of the same type. An empty target message
// matches any message of that type.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok || t.Type != e.Type {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

var (
	ErrDocumentNotFound = &DomainError{Type: ErrorTypeNotFound, Message: "Document not found"}

	ErrNoMessages           = &DomainError{Type: ErrorTypeValidation, Message: "No messages provided"}
	ErrInvalidMessageFormat = &DomainError{Type: ErrorTypeValidation, Message: "Invalid message format"}
	ErrInvalidCategory      = &DomainError{Type: ErrorTypeValidation, Message: "Unknown category"}

	ErrRateLimitExceeded = &DomainError{Type: ErrorTypeRateLimit, Message: "Too many requests, please slow down"}

	ErrProviderUnavailable = &DomainError{Type: ErrorTypeExternal, Message: "LLM provider unavailable"}
	ErrProviderTimeout     = &DomainError{Type: ErrorTypeExternal, Message: "LLM provider timeout"}
)

// WrapError attaches a type and client facing message to err.
func WrapError(errType ErrorType, message string, err error) error {
	return &DomainError{Type: errType, Message: message, Err: err}
}

func WrapInternal(message string, err error) error {
	return WrapError(ErrorTypeInternal, message, err)
}

func WrapExternal(message string, err error) error {
	return WrapError(ErrorTypeExternal, message, err)
}

// TypeOf returns the type of the first DomainError in err's chain, or ""
// when there is none.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ""
}

func IsNotFoundError(err error) bool   { return TypeOf(err) == ErrorTypeNotFound }
func IsValidationError(err error) bool { return TypeOf(err) == ErrorTypeValidation }
func IsRateLimitError(err error) bool  { return TypeOf(err) == ErrorTypeRateLimit }
func IsInternalError(err error) bool   { return TypeOf(err) == ErrorTypeInternal }
func IsExternalError(err error) bool   { return TypeOf(err) == ErrorTypeExternal }
