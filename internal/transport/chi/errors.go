package chi

import (
	"errors"
	"net/http"

	"github.com/kailas-cloud/estaterag/internal/domain"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeEmbeddingFailed  = "embedding_failed"
	codeCompletionFailed = "completion_failed"
	codeTimeout          = "timeout"
	codeNotFound         = "not_found"
	codeMethodNotAllowed = "method_not_allowed"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is ordered: timeouts also match their provider sentinel.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, codeTimeout),
		validationHandler,
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, codeEmbeddingFailed),
		sentinelHandler(domain.ErrCompletion, http.StatusBadGateway, codeCompletionFailed),
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The client sees only the sentinel text.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

// validationHandler reports the offending field; validation messages carry no internals.
func validationHandler(w http.ResponseWriter, err error) bool {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    codeValidationFailed,
		Message: ve.Error(),
		Field:   ve.Field,
	})
	return true
}

// itemError converts a per-record ingest failure.
func itemError(err error) ErrorResponse {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return ErrorResponse{Code: codeValidationFailed, Message: ve.Error(), Field: ve.Field}
	case errors.Is(err, domain.ErrTimeout):
		return ErrorResponse{Code: codeTimeout, Message: domain.ErrTimeout.Error()}
	case errors.Is(err, domain.ErrEmbedding):
		return ErrorResponse{Code: codeEmbeddingFailed, Message: domain.ErrEmbedding.Error()}
	default:
		return ErrorResponse{Code: codeInternalError, Message: "internal error"}
	}
}
