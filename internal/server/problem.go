package server

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON error shape shared by every chatgate endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes data as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an {"error": msg} response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusUnauthorized, msg)
}

// InternalError writes a 500 error response.
func InternalError(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusInternalServerError, msg)
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, msg string) {
	w.Header().Set("Retry-After", "1")
	WriteError(w, http.StatusTooManyRequests, msg)
}
