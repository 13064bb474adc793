package api

import (
	"encoding/json"
	"net/http"

	"github.com/cschleiden/go-workflows/client"
	"github.com/google/uuid"

	"github.com/cschleiden/resume-publisher/internal/model"
	"github.com/cschleiden/resume-publisher/internal/workflows"
)

// publishResume starts a publish workflow run and returns immediately; the
// workflow result is never returned synchronously. Callers poll the
// worker-events surface with the returned workflow id.
func (s *Server) publishResume(w http.ResponseWriter, r *http.Request) {
	var input model.PublishResumeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if input.FullName == "" {
		writeError(w, http.StatusBadRequest, "fullName is required")
		return
	}

	wf, err := s.client.CreateWorkflowInstance(r.Context(), client.WorkflowInstanceOptions{
		InstanceID: uuid.NewString(),
	}, workflows.PublishResume, input)
	if err != nil {
		s.logger.Error("starting publish workflow", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to start resume publishing workflow")
		return
	}

	s.logger.Info("started publish workflow",
		"workflowId", wf.InstanceID, "runId", wf.ExecutionID, "fullName", input.FullName)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message":    "Resume publishing workflow started",
		"workflowId": wf.InstanceID,
		"runId":      wf.ExecutionID,
		"status":     "processing",
		"statusUrl":  "/api/worker-events?workflowId=" + wf.InstanceID,
	})
}
