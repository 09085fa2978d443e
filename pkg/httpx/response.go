package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the machine-readable error shape returned by every handler
// and pipeline stage. Callers distinguish failures by status code, never by
// parsing prose.
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteJSON writes a JSON response with the given status code. It sets the
// Content-Type and no-store cache headers; token responses must never be
// cached by intermediaries.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the standard error body. The message is deliberately
// generic for auth failures so the HTTP boundary does not reveal which
// check failed.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, ErrorBody{Error: message, Status: code})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
