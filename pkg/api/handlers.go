package api

import (
	"encoding/json"
	"net/http"
)

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// handleHealth returns server health status.
func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRun returns a snapshot of the run in progress.
func (s *server) handleRun(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.progress.Snapshot())
}

// handleReport returns the final report once the run has finished.
func (s *server) handleReport(w http.ResponseWriter, _ *http.Request) {
	rep, ok := s.progress.Report()
	if !ok {
		writeJSON(w, http.StatusNotFound,
			errorResponse{"run has not finished"})

		return
	}

	writeJSON(w, http.StatusOK, rep)
}
