package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kailas-cloud/slatesearch/internal/domain"
)

// ErrorCode is the machine-readable error class of a response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeSearchUnavailable ErrorCode = "search_unavailable"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// unavailableMessage is the only text clients see when searching is impossible.
const unavailableMessage = "search unavailable"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler maps a sentinel to a fixed status and message. Internal
// details of err never reach the client.
func sentinelHandler(sentinel error, status int, code ErrorCode, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrSearchUnavailable, http.StatusServiceUnavailable,
			ErrorCodeSearchUnavailable, unavailableMessage),
		sentinelHandler(domain.ErrInference, http.StatusServiceUnavailable,
			ErrorCodeSearchUnavailable, unavailableMessage),
		sentinelHandler(domain.ErrNotInitialized, http.StatusServiceUnavailable,
			ErrorCodeSearchUnavailable, unavailableMessage),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusServiceUnavailable,
			ErrorCodeSearchUnavailable, unavailableMessage),
	}
}
