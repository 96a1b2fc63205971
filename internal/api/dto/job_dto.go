package dto

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

type CreateJobRequest struct {
	Title               string  `json:"title" binding:"required"`
	Description         string  `json:"description"`
	SkillsRequired      string  `json:"skills_required"`
	JobType             string  `json:"job_type"`
	LocationCity        string  `json:"location_city"`
	LocationState       string  `json:"location_state"`
	SalaryMin           *int64  `json:"salary_min"`
	SalaryMax           *int64  `json:"salary_max"`
	Status              string  `json:"status"`
	ApplicationDeadline *string `json:"application_deadline"`
}

type ListJobsRequest struct {
	Status   string `form:"status"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	ID                  int64     `json:"id"`
	EmployerID          int64     `json:"employer"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	SkillsRequired      string    `json:"skills_required"`
	JobType             string    `json:"job_type"`
	LocationCity        string    `json:"location_city"`
	LocationState       string    `json:"location_state"`
	SalaryMin           *int64    `json:"salary_min"`
	SalaryMax           *int64    `json:"salary_max"`
	Status              string    `json:"status"`
	CurrentStatus       string    `json:"current_status"`
	ApplicationDeadline *string   `json:"application_deadline"`
	Views               int64     `json:"views"`
	ApplicationCount    int64     `json:"application_count"`
	CreatedAt           time.Time `json:"created_at"`
}

// DateLayout is the wire format of application deadlines.
const DateLayout = "2006-01-02"

// ParseDate reads an optional YYYY-MM-DD deadline as midnight UTC.
func ParseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateLayout, *s, time.UTC)
	if err != nil {
		return nil, domain.NewValidationError("application_deadline", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return &t, nil
}

func NewJobDTO(job *model.Job, now time.Time) JobDTO {
	out := JobDTO{
		ID:               job.ID,
		EmployerID:       job.EmployerID,
		Title:            job.Title,
		Description:      job.Description,
		SkillsRequired:   job.SkillsRequired,
		JobType:          job.JobType,
		LocationCity:     job.LocationCity,
		LocationState:    job.LocationState,
		SalaryMin:        job.SalaryMin,
		SalaryMax:        job.SalaryMax,
		Status:           string(job.Status),
		CurrentStatus:    string(domain.CurrentJobStatus(job.Status, job.Deadline, now)),
		Views:            job.Views,
		ApplicationCount: job.ApplicationCount,
		CreatedAt:        job.CreatedAt,
	}
	if job.Deadline != nil {
		d := job.Deadline.UTC().Format(DateLayout)
		out.ApplicationDeadline = &d
	}
	return out
}

func NewJobDTOs(jobs []model.Job, now time.Time) []JobDTO {
	out := make([]JobDTO, 0, len(jobs))
	for i := range jobs {
		out = append(out, NewJobDTO(&jobs[i], now))
	}
	return out
}
