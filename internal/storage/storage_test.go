package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cschleiden/resume-publisher/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func strptr(s string) *string {
	return &s
}

func Test_Store_CreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.CreateUserInput{UserName: "Ada Lovelace"})
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "Ada Lovelace", user.UserName)

	got, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.UserName, got.UserName)
}

func Test_Store_CreateUserDuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, model.CreateUserInput{UserName: "Ada Lovelace"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, model.CreateUserInput{UserName: "Ada Lovelace"})
	require.ErrorContains(t, err, "already exists")
}

func Test_Store_GetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func Test_Store_CreateAndListResumes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.CreateUserInput{UserName: "Ada Lovelace"})
	require.NoError(t, err)

	resume, err := s.CreateResume(ctx, model.CreateResumeInput{
		UserID:     user.ID,
		FullName:   "Ada Lovelace",
		Occupation: strptr("Engineer"),
		Education: []model.EducationEntry{
			{Institution: "University of London", Degree: "Mathematics", StartDate: "1833-01", IsPresent: false},
		},
		Experience: []model.ExperienceEntry{
			{Company: "Analytical Engine", JobTitle: "Programmer", StartDate: "1842-01", IsPresent: true},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, resume.ID)
	require.False(t, resume.Published)

	got, err := s.GetResume(ctx, resume.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", got.FullName)
	require.Equal(t, "Engineer", *got.Occupation)
	require.Len(t, got.Education, 1)
	require.Len(t, got.Experience, 1)
	require.True(t, got.Experience[0].IsPresent)

	resumes, err := s.ListResumes(ctx)
	require.NoError(t, err)
	require.Len(t, resumes, 1)
}

func Test_Store_UpdateResumePublishes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.CreateUserInput{UserName: "Ada Lovelace"})
	require.NoError(t, err)

	resume, err := s.CreateResume(ctx, model.CreateResumeInput{
		UserID:   user.ID,
		FullName: "Ada Lovelace",
	})
	require.NoError(t, err)

	updated, err := s.UpdateResume(ctx, model.UpdateResumeInput{
		ID:         resume.ID,
		FullName:   resume.FullName,
		Occupation: strptr("Engineer"),
		Published:  true,
	})
	require.NoError(t, err)
	require.True(t, updated.Published)
	require.Equal(t, "Engineer", *updated.Occupation)
}

func Test_Store_UpdateResumeNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateResume(context.Background(), model.UpdateResumeInput{
		ID:       "missing",
		FullName: "Ada Lovelace",
	})
	require.ErrorIs(t, err, ErrResumeNotFound)
}
