package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cschleiden/resume-publisher/internal/events"
)

// getWorkerEvents answers the status queries: progress for one workflow id,
// the full current buffer, or aggregate buffer stats with ?debug=1.
func (s *Server) getWorkerEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("debug") == "1" {
		stats := s.events.Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"debug":       true,
			"total":       stats.Total,
			"workflowIds": stats.WorkflowIDs,
		})
		return
	}

	if id := query.Get("workflowId"); id != "" {
		writeJSON(w, http.StatusOK, map[string]any{"events": s.events.ByWorkflowID(id)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": s.events.All()})
}

// postWorkerEvent is the direct-push escape hatch for producers that cannot
// reach the broker. Records land in the store with the same defaulting rules
// as the consumer path, but carry no ordering guarantee relative to brokered
// records.
func (s *Server) postWorkerEvent(w http.ResponseWriter, r *http.Request) {
	var record events.Record
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if record.WorkflowID == "" {
		writeError(w, http.StatusBadRequest, "workflowId is required")
		return
	}

	if record.Timestamp == "" {
		record.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	s.events.Append(record)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
