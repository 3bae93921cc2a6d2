package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/ternarybob/scribe/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service-layer error onto the matching HTTP status.
// Unclassified errors become a generic 500 so internals never leak.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var rl *models.RateLimitError
	if errors.As(err, &rl) {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(rl.RetryAfter.Seconds())))
		return WriteError(w, http.StatusTooManyRequests, err.Error())
	}

	switch {
	case models.IsValidation(err), models.IsParseError(err):
		return WriteError(w, http.StatusBadRequest, err.Error())
	case models.IsNotFound(err):
		return WriteError(w, http.StatusNotFound, err.Error())
	case models.IsPayloadTooLarge(err):
		return WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		return WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// CallerID identifies the requesting user. Explicit X-User-ID wins; otherwise
// the remote address (without port) stands in, so unauthenticated callers
// still get per-host rate limits.
func CallerID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
