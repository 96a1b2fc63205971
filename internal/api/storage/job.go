package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

const jobColumns = `
	j.id, j.employer_id, j.title, j.description, j.skills_required, j.job_type,
	j.location_city, j.location_state, j.salary_min, j.salary_max, j.status,
	j.deadline, j.views, j.created_at,
	(SELECT COUNT(*) FROM job_applications a WHERE a.job_id = j.id) AS application_count
`

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			employer_id, title, description, skills_required, job_type,
			location_city, location_state, salary_min, salary_max,
			status, deadline, views, created_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, 0, ?
		)
		RETURNING id
	`

	err := s.get(ctx, &job.ID, query,
		job.EmployerID,
		job.Title,
		job.Description,
		job.SkillsRequired,
		job.JobType,
		job.LocationCity,
		job.LocationState,
		job.SalaryMin,
		job.SalaryMax,
		job.Status,
		job.Deadline,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	err := s.get(ctx, &job, `SELECT `+jobColumns+` FROM jobs j WHERE j.id = ?`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("Job")
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *Storage) IncrementJobViews(ctx context.Context, id int64) error {
	if _, err := s.exec(ctx, `UPDATE jobs SET views = views + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to increment job views: %w", err)
	}
	return nil
}

type JobFilter struct {
	EmployerID int64
	Status     domain.JobStatus
	PageSize   int
	Cursor     *Cursor
}

// Cursor is a keyset position: rows strictly older than (CreatedAt, ID).
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

// ListJobs returns up to PageSize+1 jobs, newest first, so the caller can tell
// whether another page exists.
func (s *Storage) ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE 1=1`
	args := []any{}

	if filter.EmployerID != 0 {
		query += ` AND j.employer_id = ?`
		args = append(args, filter.EmployerID)
	}

	if filter.Status != "" {
		query += ` AND j.status = ?`
		args = append(args, filter.Status)
	}

	if filter.Cursor != nil {
		query += ` AND (j.created_at < ? OR (j.created_at = ? AND j.id < ?))`
		args = append(args, filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	query += ` ORDER BY j.created_at DESC, j.id DESC LIMIT ?`
	args = append(args, filter.PageSize+1)

	jobs := []model.Job{}
	if err := s.list(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}
