package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cschleiden/go-workflows/backend"
	"github.com/cschleiden/go-workflows/backend/sqlite"
	"github.com/cschleiden/go-workflows/client"
	"github.com/cschleiden/go-workflows/core"
	"github.com/cschleiden/go-workflows/worker"
	"github.com/stretchr/testify/require"

	"github.com/cschleiden/resume-publisher/internal/api"
	"github.com/cschleiden/resume-publisher/internal/events"
	"github.com/cschleiden/resume-publisher/internal/model"
	"github.com/cschleiden/resume-publisher/internal/storage"
	"github.com/cschleiden/resume-publisher/internal/workflows"
)

// storeNotifier appends progress records straight into the event store,
// standing in for the broker-and-consumer pipeline.
type storeNotifier struct {
	store *events.Store
}

func (n storeNotifier) Publish(_ context.Context, r events.Record) error {
	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	n.store.Append(r)
	return nil
}

// Exercises the full publish pipeline: the workflow started over HTTP runs
// createUser -> createResume -> updateResume against the same API server,
// and the status surface ends up with the progress records.
func Test_PublishResume_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	b := sqlite.NewInMemoryBackend(sqlite.WithBackendOptions(backend.WithLogger(logger)))
	c := client.New(b)

	store, err := storage.NewInMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	eventStore := events.NewStore(events.DefaultCapacity)

	srv := api.NewServer(store, eventStore, c, logger)
	defer srv.Close()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	w := worker.New(b, nil)
	require.NoError(t, w.RegisterWorkflow(workflows.PublishResume))
	require.NoError(t, w.RegisterActivity(workflows.NewActivities(ts.URL, storeNotifier{store: eventStore})))
	require.NoError(t, w.Start(ctx))
	defer func() {
		cancel()
		w.WaitForCompletion()
	}()

	occupation := "Engineer"
	payload, err := json.Marshal(model.PublishResumeInput{
		FullName:   "Ada Lovelace",
		Occupation: &occupation,
		Education: []model.EducationEntry{
			{Institution: "University of London", Degree: "Mathematics", StartDate: "1833-01"},
		},
		Experience: []model.ExperienceEntry{
			{Company: "Analytical Engine", JobTitle: "Programmer", StartDate: "1842-01", IsPresent: true},
		},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/api/resume/publish", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started struct {
		WorkflowID string `json:"workflowId"`
		RunID      string `json:"runId"`
		Status     string `json:"status"`
		StatusURL  string `json:"statusUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&started))
	resp.Body.Close()

	require.NotEmpty(t, started.WorkflowID)
	require.Equal(t, "processing", started.Status)
	require.Contains(t, started.StatusURL, started.WorkflowID)

	// The workflow result is only available asynchronously.
	instance := core.NewWorkflowInstance(started.WorkflowID, started.RunID)
	result, err := client.GetWorkflowResult[*model.Resume](ctx, c, instance, time.Second*30)
	require.NoError(t, err)
	require.True(t, result.Published)
	require.Equal(t, "Ada Lovelace", result.FullName)
	require.Equal(t, "Engineer", *result.Occupation)

	// The business records exist.
	getResp, err := http.Get(ts.URL + "/api/resume/" + result.ID)
	require.NoError(t, err)

	var resumeBody struct {
		Resume model.Resume `json:"resume"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&resumeBody))
	getResp.Body.Close()
	require.True(t, resumeBody.Resume.Published)

	// Polling the status surface shows the completed pipeline, ending with
	// the updateResume completion.
	eventsResp, err := http.Get(ts.URL + "/api/worker-events?workflowId=" + started.WorkflowID)
	require.NoError(t, err)

	var eventsBody struct {
		Events []events.Record `json:"events"`
	}
	require.NoError(t, json.NewDecoder(eventsResp.Body).Decode(&eventsBody))
	eventsResp.Body.Close()

	require.Len(t, eventsBody.Events, 6)

	var completedSteps []string
	for _, r := range eventsBody.Events {
		require.Equal(t, started.WorkflowID, r.WorkflowID)
		if r.Event == events.EventActivityCompleted {
			completedSteps = append(completedSteps, r.Step)
		}
	}
	require.Equal(t, []string{"createUser", "createResume", "updateResume"}, completedSteps)
}
