package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cschleiden/resume-publisher/internal/model"
)

//go:embed schema.sql
var schema string

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrResumeNotFound = errors.New("resume not found")
)

// Store persists users and resumes in a sqlite database. The schema is
// applied at open.
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	return newStore(fmt.Sprintf("file:%v?_pragma=foreign_keys(1)", path))
}

func NewInMemoryStore() (*Store, error) {
	s, err := newStore("file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}

	s.db.SetMaxOpenConns(1)

	return s, nil
}

func newStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateUser(ctx context.Context, input model.CreateUserInput) (*model.User, error) {
	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		UserName:  input.UserName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, user_name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.UserName, formatTime(now), formatTime(now))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, fmt.Errorf("user with name %q already exists", input.UserName)
		}

		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_name, created_at, updated_at FROM users WHERE id = ?`, id)

	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_name, created_at, updated_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (s *Store) CreateResume(ctx context.Context, input model.CreateResumeInput) (*model.Resume, error) {
	now := time.Now().UTC()
	resume := &model.Resume{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		FullName:    input.FullName,
		Occupation:  input.Occupation,
		Description: input.Description,
		Education:   input.Education,
		Experience:  input.Experience,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	education, experience, err := encodeEntries(resume.Education, resume.Experience)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resumes (id, user_id, full_name, occupation, description, education, experience, published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		resume.ID, resume.UserID, resume.FullName, resume.Occupation, resume.Description,
		education, experience, formatTime(now), formatTime(now))
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, fmt.Errorf("user with id %q does not exist", input.UserID)
		}

		return nil, fmt.Errorf("inserting resume: %w", err)
	}

	return resume, nil
}

func (s *Store) GetResume(ctx context.Context, id string) (*model.Resume, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, full_name, occupation, description, education, experience, published, created_at, updated_at
		 FROM resumes WHERE id = ?`, id)

	return scanResume(row)
}

func (s *Store) ListResumes(ctx context.Context) ([]*model.Resume, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, full_name, occupation, description, education, experience, published, created_at, updated_at
		 FROM resumes ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying resumes: %w", err)
	}
	defer rows.Close()

	resumes := make([]*model.Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, resume)
	}

	return resumes, rows.Err()
}

// UpdateResume replaces the mutable fields of a resume, including the
// published flag.
func (s *Store) UpdateResume(ctx context.Context, input model.UpdateResumeInput) (*model.Resume, error) {
	education, experience, err := encodeEntries(input.Education, input.Experience)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE resumes SET full_name = ?, occupation = ?, description = ?, education = ?, experience = ?, published = ?, updated_at = ?
		 WHERE id = ?`,
		input.FullName, input.Occupation, input.Description, education, experience,
		boolToInt(input.Published), formatTime(now), input.ID)
	if err != nil {
		return nil, fmt.Errorf("updating resume: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating resume: %w", err)
	}
	if affected == 0 {
		return nil, ErrResumeNotFound
	}

	return s.GetResume(ctx, input.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var user model.User
	var createdAt, updatedAt string

	if err := row.Scan(&user.ID, &user.UserName, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		return nil, fmt.Errorf("scanning user: %w", err)
	}

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &user, nil
}

func scanResume(row scanner) (*model.Resume, error) {
	var resume model.Resume
	var education, experience string
	var published int
	var createdAt, updatedAt string

	if err := row.Scan(&resume.ID, &resume.UserID, &resume.FullName, &resume.Occupation, &resume.Description,
		&education, &experience, &published, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrResumeNotFound
		}

		return nil, fmt.Errorf("scanning resume: %w", err)
	}

	if err := json.Unmarshal([]byte(education), &resume.Education); err != nil {
		return nil, fmt.Errorf("decoding education: %w", err)
	}
	if err := json.Unmarshal([]byte(experience), &resume.Experience); err != nil {
		return nil, fmt.Errorf("decoding experience: %w", err)
	}

	resume.Published = published != 0

	var err error
	if resume.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if resume.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &resume, nil
}

func encodeEntries(education []model.EducationEntry, experience []model.ExperienceEntry) (string, string, error) {
	if education == nil {
		education = []model.EducationEntry{}
	}
	if experience == nil {
		experience = []model.ExperienceEntry{}
	}

	educationJSON, err := json.Marshal(education)
	if err != nil {
		return "", "", fmt.Errorf("encoding education: %w", err)
	}

	experienceJSON, err := json.Marshal(experience)
	if err != nil {
		return "", "", fmt.Errorf("encoding experience: %w", err)
	}

	return string(educationJSON), string(experienceJSON), nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp: %w", err)
	}

	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
