package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/cschleiden/go-workflows/tester"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cschleiden/resume-publisher/internal/model"
)

func Test_PublishResume(t *testing.T) {
	wt := tester.NewWorkflowTester[*model.Resume](PublishResume)

	var a *Activities

	occupation := "Engineer"
	user := &model.User{ID: "user-1", UserName: "Ada Lovelace"}
	resume := &model.Resume{ID: "resume-1", UserID: "user-1", FullName: "Ada Lovelace", Occupation: &occupation}
	published := &model.Resume{ID: "resume-1", UserID: "user-1", FullName: "Ada Lovelace", Occupation: &occupation, Published: true}

	wt.OnActivity(a.CreateUser, mock.Anything, mock.Anything, "Ada Lovelace").Return(user, nil)
	wt.OnActivity(a.CreateResume, mock.Anything, mock.Anything, mock.MatchedBy(func(input model.CreateResumeInput) bool {
		return input.UserID == "user-1" && input.FullName == "Ada Lovelace"
	})).Return(resume, nil)
	wt.OnActivity(a.UpdateResume, mock.Anything, mock.Anything, mock.MatchedBy(func(input model.UpdateResumeInput) bool {
		return input.ID == "resume-1" && input.Published
	})).Return(published, nil)

	wt.Execute(context.Background(), model.PublishResumeInput{
		FullName:   "Ada Lovelace",
		Occupation: &occupation,
	})

	require.True(t, wt.WorkflowFinished())

	result, err := wt.WorkflowResult()
	require.NoError(t, err)
	require.True(t, result.Published)
	require.Equal(t, "resume-1", result.ID)

	wt.AssertExpectations(t)
}

func Test_PublishResume_FailingActivityFailsTheRun(t *testing.T) {
	wt := tester.NewWorkflowTester[*model.Resume](PublishResume)

	var a *Activities

	user := &model.User{ID: "user-1", UserName: "Ada Lovelace"}

	wt.OnActivity(a.CreateUser, mock.Anything, mock.Anything, mock.Anything).Return(user, nil)
	// Fails every attempt, so the substrate's retries are exhausted and the
	// failure becomes terminal.
	wt.OnActivity(a.CreateResume, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("createResume: status 500: boom"))

	wt.Execute(context.Background(), model.PublishResumeInput{FullName: "Ada Lovelace"})

	require.True(t, wt.WorkflowFinished())

	_, err := wt.WorkflowResult()
	require.Error(t, err)
	require.Contains(t, err.Error(), "creating resume")
}

func Test_PublishResume_NoUpdateAfterCreateResumeFails(t *testing.T) {
	wt := tester.NewWorkflowTester[*model.Resume](PublishResume)

	var a *Activities

	wt.OnActivity(a.CreateUser, mock.Anything, mock.Anything, mock.Anything).
		Return(&model.User{ID: "user-1"}, nil)
	wt.OnActivity(a.CreateResume, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("user does not exist"))

	wt.Execute(context.Background(), model.PublishResumeInput{FullName: "Ada Lovelace"})

	require.True(t, wt.WorkflowFinished())

	// UpdateResume was never mocked; reaching it would have failed the test
	// with an unexpected call.
	wt.AssertExpectations(t)
}
