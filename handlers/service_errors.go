package handlers

import (
	"errors"
	"net/http"

	"github.com/upb/research-assistant/corpus"
	"github.com/upb/research-assistant/services"
	"github.com/upb/research-assistant/utils"
	"go.uber.org/zap"
)

// genericFailureMessage is the error text of any 500 response
const genericFailureMessage = "An error occurred while processing your request"

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	if errors.Is(err, corpus.ErrDocumentNotFound) {
		err = services.WrapError(services.ErrorTypeNotFound, services.ErrDocumentNotFound.Message, err)
	}

	var writeErr error
	switch {
	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, errorMessage(err))

	case services.IsValidationError(err):
		writeErr = utils.WriteBadRequest(w, errorMessage(err), nil)

	case services.IsRateLimitError(err):
		writeErr = utils.WriteTooManyRequests(w, errorMessage(err), nil)

	case services.IsExternalError(err):
		logger.Error("upstream failure", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, genericFailureMessage, errorCause(err))

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, genericFailureMessage, errorMessage(err))

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.TypeOf(err))))
		writeErr = utils.WriteInternalServerError(w, genericFailureMessage, err.Error())
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var details interface{}
	message := err.Error()
	if utils.IsValidationError(err) {
		details = utils.GetValidationFields(err)
	}

	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}

// errorMessage is the client facing message of err
func errorMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// errorCause is the message of the error a domain error wraps, which for
// upstream failures is the provider's own explanation
func errorCause(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) && domainErr.Err != nil {
		return domainErr.Err.Error()
	}
	return errorMessage(err)
}
