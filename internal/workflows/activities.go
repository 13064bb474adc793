package workflows

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cschleiden/go-workflows/activity"

	"github.com/cschleiden/resume-publisher/internal/events"
	"github.com/cschleiden/resume-publisher/internal/model"
)

const (
	stepCreateUser   = "createUser"
	stepCreateResume = "createResume"
	stepUpdateResume = "updateResume"
)

// Per-invocation time budget for one activity's HTTP call. The substrate may
// retry a timed-out invocation from scratch, so every call here runs with
// at-least-once semantics. No idempotency key is passed to the CRUD service,
// which means a retry after a timeout can create duplicate user/resume rows.
const activityTimeout = time.Minute

// RunInfo identifies the workflow run an activity executes for. The workflow
// passes it into every activity so emitted progress records carry the
// correlation id.
type RunInfo struct {
	WorkflowID string `json:"workflowId"`
	RunID      string `json:"runId"`
}

// Activities holds the shared state for the publish pipeline steps: the base
// URL of the CRUD service and the best-effort progress notifier. Activities
// run concurrently across workflow instances, so everything here must be safe
// for parallel use.
type Activities struct {
	apiURL   string
	client   *http.Client
	notifier events.Notifier
}

func NewActivities(apiURL string, notifier events.Notifier) *Activities {
	return &Activities{
		apiURL:   strings.TrimRight(apiURL, "/"),
		client:   &http.Client{Timeout: activityTimeout},
		notifier: notifier,
	}
}

func (a *Activities) CreateUser(ctx context.Context, run RunInfo, userName string) (*model.User, error) {
	a.notify(ctx, run, stepCreateUser, events.EventActivityStarted, fmt.Sprintf("creating user %q", userName))

	var out struct {
		User *model.User `json:"user"`
	}
	if err := a.call(ctx, http.MethodPost, "/api/user", model.CreateUserInput{UserName: userName}, &out); err != nil {
		a.notify(ctx, run, stepCreateUser, events.EventActivityFailed, err.Error())
		return nil, fmt.Errorf("createUser: %w", err)
	}

	if out.User == nil {
		err := fmt.Errorf("createUser: response missing user object")
		a.notify(ctx, run, stepCreateUser, events.EventActivityFailed, err.Error())
		return nil, err
	}

	a.notify(ctx, run, stepCreateUser, events.EventActivityCompleted, "created user "+out.User.ID)

	return out.User, nil
}

func (a *Activities) CreateResume(ctx context.Context, run RunInfo, input model.CreateResumeInput) (*model.Resume, error) {
	a.notify(ctx, run, stepCreateResume, events.EventActivityStarted, "creating resume for user "+input.UserID)

	var out struct {
		Resume *model.Resume `json:"resume"`
	}
	if err := a.call(ctx, http.MethodPost, "/api/resume", input, &out); err != nil {
		a.notify(ctx, run, stepCreateResume, events.EventActivityFailed, err.Error())
		return nil, fmt.Errorf("createResume: %w", err)
	}

	if out.Resume == nil {
		err := fmt.Errorf("createResume: response missing resume object")
		a.notify(ctx, run, stepCreateResume, events.EventActivityFailed, err.Error())
		return nil, err
	}

	a.notify(ctx, run, stepCreateResume, events.EventActivityCompleted, "created resume "+out.Resume.ID)

	return out.Resume, nil
}

func (a *Activities) UpdateResume(ctx context.Context, run RunInfo, input model.UpdateResumeInput) (*model.Resume, error) {
	a.notify(ctx, run, stepUpdateResume, events.EventActivityStarted, "publishing resume "+input.ID)

	var out struct {
		Resume *model.Resume `json:"resume"`
	}
	if err := a.call(ctx, http.MethodPut, "/api/resume/"+input.ID, input, &out); err != nil {
		a.notify(ctx, run, stepUpdateResume, events.EventActivityFailed, err.Error())
		return nil, fmt.Errorf("updateResume: %w", err)
	}

	if out.Resume == nil {
		err := fmt.Errorf("updateResume: response missing resume object")
		a.notify(ctx, run, stepUpdateResume, events.EventActivityFailed, err.Error())
		return nil, err
	}

	a.notify(ctx, run, stepUpdateResume, events.EventActivityCompleted, "published resume "+out.Resume.ID)

	return out.Resume, nil
}

// notify emits a progress record for this run. Emission is best-effort: a
// publisher failure is logged and dropped, it never aborts the activity.
func (a *Activities) notify(ctx context.Context, run RunInfo, step, event, message string) {
	err := a.notifier.Publish(ctx, events.Record{
		WorkflowID: run.WorkflowID,
		RunID:      run.RunID,
		Event:      event,
		Step:       step,
		Message:    message,
	})
	if err != nil {
		activity.Logger(ctx).Warn("dropping progress record", "step", step, "event", event, "err", err)
	}
}

// call performs one JSON request against the CRUD service. Non-2xx responses
// carry the failure reason in the body, which is surfaced in the error so the
// workflow's terminal failure names the cause.
func (a *Activities) call(ctx context.Context, method, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(reason)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
