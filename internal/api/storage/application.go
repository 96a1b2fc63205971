package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

const applicationSelect = `
	SELECT
		a.id, a.job_id, a.applicant_id, a.status, a.cover_letter, a.portfolio_link,
		a.version, a.created_at, a.updated_at,
		u.full_name AS applicant_name, u.email AS applicant_email,
		j.title AS job_title, j.employer_id
	FROM job_applications a
	JOIN users u ON u.id = a.applicant_id
	JOIN jobs j ON j.id = a.job_id
`

const duplicateApplicationMessage = "You have already applied for this job."

// CreateApplication inserts a pending application. The (job_id, applicant_id)
// unique key decides duplicates, including concurrent ones.
func (s *Storage) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	query := `
		INSERT INTO job_applications (
			job_id, applicant_id, status, cover_letter, portfolio_link,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (job_id, applicant_id) DO NOTHING
		RETURNING id
	`

	err := s.get(ctx, &app.ID, query,
		app.JobID,
		app.ApplicantID,
		app.Status,
		app.CoverLetter,
		app.PortfolioLink,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return domain.NewValidationError("non_field_errors", duplicateApplicationMessage)
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	app.Version = 1
	return nil
}

func (s *Storage) CountApplications(ctx context.Context, jobID, applicantID int64) (int64, error) {
	var n int64
	query := `SELECT COUNT(*) FROM job_applications WHERE job_id = ? AND applicant_id = ?`
	if err := s.get(ctx, &n, query, jobID, applicantID); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return n, nil
}

func (s *Storage) GetApplicationByID(ctx context.Context, id int64) (*model.JobApplication, error) {
	var app model.JobApplication
	err := s.get(ctx, &app, applicationSelect+` WHERE a.id = ?`, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NewNotFoundError("Application")
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &app, nil
}

// UpdateApplicationStatus writes the new status only if the row still carries
// the expected version; otherwise a concurrent update won and ErrConflict is returned.
func (s *Storage) UpdateApplicationStatus(ctx context.Context, id, expectedVersion int64, status domain.ApplicationStatus, updatedAt time.Time) error {
	query := `
		UPDATE job_applications
		SET status = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	affected, err := s.exec(ctx, query, status, updatedAt, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("application %d: %w", id, domain.ErrConflict)
	}

	return nil
}

func (s *Storage) ListApplicationsByApplicant(ctx context.Context, applicantID int64) ([]model.JobApplication, error) {
	apps := []model.JobApplication{}
	query := applicationSelect + ` WHERE a.applicant_id = ? ORDER BY a.created_at DESC, a.id DESC`
	if err := s.list(ctx, &apps, query, applicantID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *Storage) ListApplicationsByEmployer(ctx context.Context, employerID int64) ([]model.JobApplication, error) {
	apps := []model.JobApplication{}
	query := applicationSelect + ` WHERE j.employer_id = ? ORDER BY a.created_at DESC, a.id DESC`
	if err := s.list(ctx, &apps, query, employerID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *Storage) ListApplicationsByJob(ctx context.Context, jobID int64) ([]model.JobApplication, error) {
	apps := []model.JobApplication{}
	query := applicationSelect + ` WHERE a.job_id = ? ORDER BY a.created_at DESC, a.id DESC`
	if err := s.list(ctx, &apps, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
