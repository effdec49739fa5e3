package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"cipherkit/internal/errors"
)

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error          string             `json:"error"`
	Code           string             `json:"code"`
	Details        interface{}        `json:"details,omitempty"`
	SuggestedFixes []errors.FixAction `json:"suggestedFixes,omitempty"`
}

// WriteError writes an error response with an explicit status
func WriteError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := ErrorResponse{
		Error: err.Error(),
		Code:  string(errors.InternalError),
	}

	var ce *errors.CipherError
	if stderrors.As(err, &ce) {
		resp.Error = ce.Message
		resp.Code = string(ce.Code)
		resp.Details = ce.Details
		resp.SuggestedFixes = ce.SuggestedFixes
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteCipherError writes err with the status mapped from its code
func WriteCipherError(w http.ResponseWriter, err error) {
	WriteError(w, err, MapErrorToStatus(errors.CodeOf(err)))
}

// MapErrorToStatus maps error codes to HTTP status codes
func MapErrorToStatus(code errors.ErrorCode) int {
	switch code {
	case errors.UnsupportedAlgorithm, errors.UnsupportedHash:
		return http.StatusNotFound // 404
	case errors.InvalidOperation, errors.MissingParameter, errors.EmptyInput:
		return http.StatusBadRequest // 400
	case errors.InvalidParameter:
		return http.StatusUnprocessableEntity // 422
	case errors.InputTooLarge:
		return http.StatusRequestEntityTooLarge // 413
	default:
		return http.StatusInternalServerError // 500
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// BadRequest writes a 400 Bad Request error
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, errors.Newf(errors.InvalidParameter, "%s", message), http.StatusBadRequest)
}

// InternalError writes a 500 Internal Server Error
func InternalError(w http.ResponseWriter, message string, err error) {
	WriteError(w, errors.New(errors.InternalError, message, err), http.StatusInternalServerError)
}
