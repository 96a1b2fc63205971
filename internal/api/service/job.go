package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
)

type JobService struct {
	logger *slog.Logger
	store  *storage.Storage
	clock  Clock
}

func NewJobService(deps Dependencies) *JobService {
	return &JobService{
		logger: deps.Logger,
		store:  deps.Storage,
		clock:  deps.Clock,
	}
}

type CreateJobInput struct {
	Title          string
	Description    string
	SkillsRequired string
	JobType        string
	LocationCity   string
	LocationState  string
	SalaryMin      *int64
	SalaryMax      *int64
	Status         string
	Deadline       *time.Time
}

func (in CreateJobInput) validate() (domain.JobStatus, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", domain.NewValidationError("title", "This field may not be blank.")
	}
	if in.SalaryMin != nil && *in.SalaryMin < 0 {
		return "", domain.NewValidationError("salary_min", "Ensure this value is greater than or equal to 0.")
	}
	if in.SalaryMin != nil && in.SalaryMax != nil && *in.SalaryMin > *in.SalaryMax {
		return "", domain.NewValidationError("salary_max", "Maximum salary must be greater than or equal to minimum salary.")
	}
	return domain.ParseJobStatus(in.Status)
}

func (s *JobService) Create(ctx context.Context, actor domain.Identity, input CreateJobInput) (*model.Job, error) {
	if actor.Role != domain.RoleEmployer {
		return nil, domain.NewPermissionError("Only employers can post jobs.")
	}

	status, err := input.validate()
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		EmployerID:     actor.UserID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		SkillsRequired: input.SkillsRequired,
		JobType:        input.JobType,
		LocationCity:   input.LocationCity,
		LocationState:  input.LocationState,
		SalaryMin:      input.SalaryMin,
		SalaryMax:      input.SalaryMax,
		Status:         status,
		Deadline:       input.Deadline,
		CreatedAt:      s.clock.now(),
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info("Job posted",
		slog.Int64("job_id", job.ID),
		slog.Int64("employer_id", job.EmployerID),
	)

	return job, nil
}

// Get returns a job and counts the view.
func (s *JobService) Get(ctx context.Context, id int64) (*model.Job, error) {
	var job *model.Job
	err := s.store.WithTx(ctx, func(tx *storage.Storage) error {
		if err := tx.IncrementJobViews(ctx, id); err != nil {
			return err
		}
		var err error
		job, err = tx.GetJobByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// JobPage is one page of jobs, newest first.
type JobPage struct {
	Items []model.Job
	Next  *storage.Cursor
}

func (s *JobService) List(ctx context.Context, status string, cursor *storage.Cursor, pageSize int) (*JobPage, error) {
	filter := storage.JobFilter{Cursor: cursor}
	if status != "" {
		parsed, err := domain.ParseJobStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = parsed
	}
	return s.page(ctx, filter, pageSize)
}

// ListMine returns the jobs posted by the calling employer.
func (s *JobService) ListMine(ctx context.Context, actor domain.Identity, cursor *storage.Cursor, pageSize int) (*JobPage, error) {
	if actor.Role != domain.RoleEmployer {
		return nil, domain.NewPermissionError("Only employers can view their posted jobs.")
	}
	return s.page(ctx, storage.JobFilter{EmployerID: actor.UserID, Cursor: cursor}, pageSize)
}

func (s *JobService) page(ctx context.Context, filter storage.JobFilter, pageSize int) (*JobPage, error) {
	filter.PageSize = normalizePageSize(pageSize)

	items, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &JobPage{Items: items}
	if len(items) > filter.PageSize {
		page.Items = items[:filter.PageSize]
		last := page.Items[filter.PageSize-1]
		page.Next = &storage.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}

	return page, nil
}

// Now is the clock reading handlers use to derive a job's current status.
func (s *JobService) Now() time.Time {
	return s.clock.now()
}
