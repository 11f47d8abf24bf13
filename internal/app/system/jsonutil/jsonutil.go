// Package jsonutil writes the JSON bodies served by the health probes and the
// dashboard data endpoint.
package jsonutil

import (
	"encoding/json"
	"net/http"
)

// JSON encodes v with the given status. Responses are never cached: every
// caller reports live state.
func JSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK is JSON with 200.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, struct {
		Error string `json:"error"`
	}{msg})
}
