package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
)

type ApplicationService struct {
	logger        *slog.Logger
	store         *storage.Storage
	notifications *NotificationService
	clock         Clock
}

func NewApplicationService(deps Dependencies, notifications *NotificationService) *ApplicationService {
	return &ApplicationService{
		logger:        deps.Logger,
		store:         deps.Storage,
		notifications: notifications,
		clock:         deps.Clock,
	}
}

type CreateApplicationInput struct {
	JobID         int64
	CoverLetter   string
	PortfolioLink string
}

// Create files a pending application for the caller and notifies the job's
// employer. Checks run in order: role, job, deadline, duplicate.
func (s *ApplicationService) Create(ctx context.Context, actor domain.Identity, input CreateApplicationInput) (*model.JobApplication, error) {
	if actor.Role != domain.RoleJobSeeker {
		return nil, domain.NewValidationError("non_field_errors", "Only job seekers can apply for jobs.")
	}

	var (
		app          *model.JobApplication
		notification *model.Notification
	)

	err := s.store.WithTx(ctx, func(tx *storage.Storage) error {
		job, err := tx.GetJobByID(ctx, input.JobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("job", "Job not found.")
			}
			return err
		}

		now := s.clock.now()
		if domain.DeadlinePassed(job.Deadline, now) {
			return domain.NewValidationError("non_field_errors", "The application deadline for this job has passed.")
		}

		existing, err := tx.CountApplications(ctx, job.ID, actor.UserID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return domain.NewValidationError("non_field_errors", "You have already applied for this job.")
		}

		applicant, err := tx.GetUserByID(ctx, actor.UserID)
		if err != nil {
			return err
		}

		created := &model.JobApplication{
			JobID:         job.ID,
			ApplicantID:   applicant.ID,
			Status:        domain.ApplicationPending,
			CoverLetter:   input.CoverLetter,
			PortfolioLink: input.PortfolioLink,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.CreateApplication(ctx, created); err != nil {
			return err
		}

		text, link := newApplicationNotification(applicant, job)
		if notification, err = s.notifications.Enqueue(ctx, tx, job.EmployerID, text, link); err != nil {
			return err
		}

		app, err = tx.GetApplicationByID(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Application created",
		slog.Int64("application_id", app.ID),
		slog.Int64("job_id", app.JobID),
		slog.Int64("applicant_id", app.ApplicantID),
	)

	s.notifications.Dispatch(ctx, notification)

	return app, nil
}

// UpdateStatus moves an application to newStatus on behalf of the employer who
// owns its job. A same-status update returns the application unchanged and
// sends nothing; any realized change notifies the applicant.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor domain.Identity, applicationID int64, newStatus string) (*model.JobApplication, error) {
	var (
		app          *model.JobApplication
		notification *model.Notification
	)

	err := s.store.WithTx(ctx, func(tx *storage.Storage) error {
		current, err := tx.GetApplicationByID(ctx, applicationID)
		if err != nil {
			return err
		}

		if err := authorizeStatusUpdate(actor, current); err != nil {
			return err
		}

		changed, err := domain.ValidateTransition(current.Status, domain.ApplicationStatus(newStatus))
		if err != nil {
			return err
		}
		if !changed {
			app = current
			return nil
		}

		if err := tx.UpdateApplicationStatus(ctx, current.ID, current.Version, domain.ApplicationStatus(newStatus), s.clock.now()); err != nil {
			return err
		}

		text, link := statusChangedNotification(current.JobTitle, domain.ApplicationStatus(newStatus))
		if notification, err = s.notifications.Enqueue(ctx, tx, current.ApplicantID, text, link); err != nil {
			return err
		}

		app, err = tx.GetApplicationByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if notification != nil {
		s.logger.Info("Application status updated",
			slog.Int64("application_id", app.ID),
			slog.String("status", string(app.Status)),
			slog.Int64("actor_id", actor.UserID),
		)
		s.notifications.Dispatch(ctx, notification)
	}

	return app, nil
}

func authorizeStatusUpdate(actor domain.Identity, app *model.JobApplication) error {
	switch actor.Role {
	case domain.RoleEmployer:
		if app.EmployerID != actor.UserID {
			return domain.NewPermissionError("You can only update applications for your own jobs.")
		}
		return nil
	default:
		return domain.NewPermissionError("Only employers can update job applications.")
	}
}

func canViewApplication(actor domain.Identity, app *model.JobApplication) bool {
	switch actor.Role {
	case domain.RoleJobSeeker:
		return app.ApplicantID == actor.UserID
	case domain.RoleEmployer:
		return app.EmployerID == actor.UserID
	default:
		return false
	}
}

// Get returns the application to its applicant or to the owning employer.
func (s *ApplicationService) Get(ctx context.Context, actor domain.Identity, applicationID int64) (*model.JobApplication, error) {
	app, err := s.store.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if !canViewApplication(actor, app) {
		return nil, domain.NewPermissionError("You do not have permission to view this application.")
	}

	return app, nil
}

// List returns a job seeker's own applications or the applications to an
// employer's jobs. Admins see none.
func (s *ApplicationService) List(ctx context.Context, actor domain.Identity) ([]model.JobApplication, error) {
	switch actor.Role {
	case domain.RoleJobSeeker:
		return s.store.ListApplicationsByApplicant(ctx, actor.UserID)
	case domain.RoleEmployer:
		return s.store.ListApplicationsByEmployer(ctx, actor.UserID)
	default:
		return []model.JobApplication{}, nil
	}
}

func (s *ApplicationService) ListForJob(ctx context.Context, actor domain.Identity, jobID int64) ([]model.JobApplication, error) {
	job, err := s.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleEmployer:
		if job.EmployerID != actor.UserID {
			return nil, domain.NewPermissionError("You do not have permission to view applications for this job.")
		}
	default:
		return nil, domain.NewPermissionError("Only employers can view job applications.")
	}

	return s.store.ListApplicationsByJob(ctx, job.ID)
}
