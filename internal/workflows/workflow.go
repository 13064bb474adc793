package workflows

import (
	"fmt"
	"time"

	"github.com/cschleiden/go-workflows/workflow"

	"github.com/cschleiden/resume-publisher/internal/model"
)

// Activity options for all publish pipeline steps: the execution substrate
// retries a failing activity up to three times with exponential backoff
// before the failure propagates and ends the run.
var publishActivityOptions = workflow.ActivityOptions{
	RetryOptions: workflow.RetryOptions{
		MaxAttempts:        3,
		FirstRetryInterval: time.Second * 2,
		BackoffCoefficient: 2,
	},
}

// PublishResume runs the fixed pipeline createUser -> createResume ->
// updateResume(published). Each step's output feeds the next, so execution is
// strictly sequential. There is no compensation: a run that created a user
// but never published the resume is a visible, accepted outcome.
func PublishResume(ctx workflow.Context, input model.PublishResumeInput) (*model.Resume, error) {
	logger := workflow.Logger(ctx)
	logger.Debug("Entering PublishResume", "fullName", input.FullName)
	defer logger.Debug("Leaving PublishResume")

	// Identity of this run, threaded through every activity so emitted
	// progress records carry the correlation id.
	wi := workflow.WorkflowInstance(ctx)
	run := RunInfo{WorkflowID: wi.InstanceID, RunID: wi.ExecutionID}

	var a *Activities

	user, err := workflow.ExecuteActivity[*model.User](
		ctx, publishActivityOptions, a.CreateUser, run, input.FullName).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	resume, err := workflow.ExecuteActivity[*model.Resume](
		ctx, publishActivityOptions, a.CreateResume, run, model.CreateResumeInput{
			UserID:      user.ID,
			FullName:    input.FullName,
			Occupation:  input.Occupation,
			Description: input.Description,
			Education:   input.Education,
			Experience:  input.Experience,
		}).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating resume: %w", err)
	}

	published, err := workflow.ExecuteActivity[*model.Resume](
		ctx, publishActivityOptions, a.UpdateResume, run, model.UpdateResumeInput{
			ID:          resume.ID,
			FullName:    resume.FullName,
			Occupation:  resume.Occupation,
			Description: resume.Description,
			Education:   resume.Education,
			Experience:  resume.Experience,
			Published:   true,
		}).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("publishing resume: %w", err)
	}

	return published, nil
}
