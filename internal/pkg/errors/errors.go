package errors

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Realm is advertised in WWW-Authenticate on every 401.
const Realm = "webhook-sandbox"

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeEnvironmentMismatch = "ENVIRONMENT_MISMATCH"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeRateLimitExceeded   = "RATE_LIMIT_EXCEEDED"
	ErrCodeDeliveryNotRecorded = "DELIVERY_NOT_RECORDED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="`+Realm+`"`)
	}
	WriteJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteStoreError maps a repository error to a response: sql.ErrNoRows is a
// 404 for resource, anything else is logged and reported as a 500.
func WriteStoreError(w http.ResponseWriter, err error, resource string) {
	if stderrors.Is(err, sql.ErrNoRows) {
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, resource+" not found", nil)
		return
	}
	log.Error().Err(err).Str("resource", resource).Msg("store operation failed")
	WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil)
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
