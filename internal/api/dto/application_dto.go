package dto

import (
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
)

type CreateApplicationRequest struct {
	JobID         int64  `json:"job" binding:"required"`
	CoverLetter   string `json:"cover_letter"`
	PortfolioLink string `json:"portfolio_link"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ApplicationDTO struct {
	ID             int64     `json:"id"`
	JobID          int64     `json:"job"`
	JobTitle       string    `json:"job_title"`
	ApplicantID    int64     `json:"applicant"`
	ApplicantName  string    `json:"applicant_name"`
	ApplicantEmail string    `json:"applicant_email"`
	Status         string    `json:"status"`
	CoverLetter    string    `json:"cover_letter"`
	PortfolioLink  string    `json:"portfolio_link"`
	Version        int64     `json:"version"`
	AppliedAt      time.Time `json:"applied_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewApplicationDTO(app *model.JobApplication) ApplicationDTO {
	return ApplicationDTO{
		ID:             app.ID,
		JobID:          app.JobID,
		JobTitle:       app.JobTitle,
		ApplicantID:    app.ApplicantID,
		ApplicantName:  app.ApplicantName,
		ApplicantEmail: app.ApplicantEmail,
		Status:         string(app.Status),
		CoverLetter:    app.CoverLetter,
		PortfolioLink:  app.PortfolioLink,
		Version:        app.Version,
		AppliedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}

func NewApplicationDTOs(apps []model.JobApplication) []ApplicationDTO {
	out := make([]ApplicationDTO, 0, len(apps))
	for i := range apps {
		out = append(out, NewApplicationDTO(&apps[i]))
	}
	return out
}
