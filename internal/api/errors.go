package api

import (
	"encoding/json"
	"net/http"
)

// Client-facing messages that are not produced by the validator.
const (
	msgNotFound    = "Bookmark doesn't exist"
	msgInvalidJSON = "Invalid JSON in request body"
	msgServerError = "server error"

	msgMethodNotAllowed = "Method not allowed"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorMessage `json:"error"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given HTTP status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorMessage{Message: message}})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
