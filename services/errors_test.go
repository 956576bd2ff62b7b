package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Error(t *testing.T) {
	assert.Equal(t,
		"external: provider request failed (connection reset)",
		WrapExternal("provider request failed", errors.New("connection reset")).Error())
	assert.Equal(t, "validation: No messages provided", ErrNoMessages.Error())
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"wrapped sentinel", fmt.Errorf("wrapped: %w", ErrNoMessages), ErrNoMessages, true},
		{"same type, other message", ErrInvalidMessageFormat, ErrNoMessages, false},
		{"type-only target", ErrInvalidCategory, &DomainError{Type: ErrorTypeValidation}, true},
		{"same message, other type", WrapError(ErrorTypeValidation, "Document not found", nil), ErrDocumentNotFound, false},
		{"plain target", ErrDocumentNotFound, errors.New("Document not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("disk full")
	wrapped := WrapError(ErrorTypeInternal, "failed to record turn", cause)

	var de *DomainError
	require.ErrorAs(t, wrapped, &de)
	assert.Equal(t, ErrorTypeInternal, de.Type)
	assert.Equal(t, "failed to record turn", de.Message)
	assert.ErrorIs(t, wrapped, cause)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, TypeOf(fmt.Errorf("get: %w", ErrDocumentNotFound)))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(ErrRateLimitExceeded))
	assert.Equal(t, ErrorTypeExternal, TypeOf(ErrProviderUnavailable))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", ErrDocumentNotFound, IsNotFoundError, true},
		{"validation is not not-found", ErrNoMessages, IsNotFoundError, false},
		{"nil", nil, IsNotFoundError, false},
		{"invalid category", ErrInvalidCategory, IsValidationError, true},
		{"plain error", errors.New("regular"), IsValidationError, false},
		{"rate limit", ErrRateLimitExceeded, IsRateLimitError, true},
		{"internal", WrapInternal("failed to build system prompt", errors.New("boom")), IsInternalError, true},
		{"external is not internal", ErrProviderUnavailable, IsInternalError, false},
		{"timeout", ErrProviderTimeout, IsExternalError, true},
		{"wrapped external", fmt.Errorf("chat: %w", WrapExternal("stream failed", errors.New("eof"))), IsExternalError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}
