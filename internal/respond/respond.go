// Package respond writes the JSON envelopes shared by every endpoint.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const StatusSuccess = "success"

type Envelope struct {
	Status  string `json:"status"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

// Success wraps data in a success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Status: StatusSuccess, Data: data})
}

// List is Success with a results count.
func List(w http.ResponseWriter, status, results int, data any) {
	JSON(w, status, Envelope{Status: StatusSuccess, Results: &results, Data: data})
}

// NoContent answers 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
