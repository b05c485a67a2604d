// Package api provides HTTP API handlers for the Tadasana posture monitoring system.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/tadasana/internal/posture"
)

// SnapshotSource exposes the latest pipeline output. *app.App satisfies it.
type SnapshotSource interface {
	Latest() (posture.Snapshot, time.Time, bool)
	InputError() error
}

// PostureHandler serves the most recent posture snapshot.
type PostureHandler struct {
	source SnapshotSource
}

// NewPostureHandler creates a new PostureHandler reading from the given source.
func NewPostureHandler(source SnapshotSource) *PostureHandler {
	return &PostureHandler{source: source}
}

type postureResponse struct {
	Snapshot   posture.Snapshot `json:"snapshot"`
	CapturedAt string           `json:"captured_at"`
	InputOK    bool             `json:"input_ok"`
	InputError string           `json:"input_error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// ServeHTTP handles GET /api/posture and returns the latest snapshot.
func (h *PostureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, at, ok := h.source.Latest()
	if !ok {
		writeError(w, http.StatusNotFound, "No posture data yet")
		return
	}

	response := postureResponse{
		Snapshot:   snapshot,
		CapturedAt: at.Format(time.RFC3339Nano),
		InputOK:    true,
	}
	if err := h.source.InputError(); err != nil {
		response.InputOK = false
		response.InputError = err.Error()
	}

	writeJSON(w, http.StatusOK, response)
}
