package model

import "time"

// EducationEntry mirrors the education entries submitted by the resume form.
type EducationEntry struct {
	Institution string  `json:"institution"`
	Degree      string  `json:"degree"`
	StartDate   string  `json:"startDate"`
	EndDate     *string `json:"endDate"`
	IsPresent   bool    `json:"isPresent"`
}

// ExperienceEntry mirrors the experience entries submitted by the resume form.
type ExperienceEntry struct {
	Company   string  `json:"company"`
	JobTitle  string  `json:"jobTitle"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate"`
	IsPresent bool    `json:"isPresent"`
}

type User struct {
	ID        string    `json:"id"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Resume struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	FullName    string            `json:"fullName"`
	Occupation  *string           `json:"occupation"`
	Description *string           `json:"description"`
	Education   []EducationEntry  `json:"education"`
	Experience  []ExperienceEntry `json:"experience"`
	Published   bool              `json:"published"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type CreateUserInput struct {
	UserName string `json:"userName"`
}

type CreateResumeInput struct {
	UserID      string            `json:"userId"`
	FullName    string            `json:"fullName"`
	Occupation  *string           `json:"occupation,omitempty"`
	Description *string           `json:"description,omitempty"`
	Education   []EducationEntry  `json:"education,omitempty"`
	Experience  []ExperienceEntry `json:"experience,omitempty"`
}

// UpdateResumeInput carries the full field set for a resume update. The
// target resume id travels outside the body, matching PUT /api/resume/{id}.
type UpdateResumeInput struct {
	ID          string            `json:"id"`
	FullName    string            `json:"fullName"`
	Occupation  *string           `json:"occupation,omitempty"`
	Description *string           `json:"description,omitempty"`
	Education   []EducationEntry  `json:"education,omitempty"`
	Experience  []ExperienceEntry `json:"experience,omitempty"`
	Published   bool              `json:"published"`
}

// PublishResumeInput is the submission that starts a publish workflow run.
type PublishResumeInput struct {
	FullName    string            `json:"fullName"`
	Occupation  *string           `json:"occupation,omitempty"`
	Description *string           `json:"description,omitempty"`
	Education   []EducationEntry  `json:"education,omitempty"`
	Experience  []ExperienceEntry `json:"experience,omitempty"`
}
