package handler

import (
	"log/slog"
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/gin-gonic/gin"
)

// CreateJob handles POST /api/v1/jobs
func (h *Handler) CreateJob(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	deadline, err := dto.ParseDate(req.ApplicationDeadline)
	if err != nil {
		h.respondError(c, err)
		return
	}

	job, err := h.services.Jobs.Create(c.Request.Context(), identityFrom(c), service.CreateJobInput{
		Title:          req.Title,
		Description:    req.Description,
		SkillsRequired: req.SkillsRequired,
		JobType:        req.JobType,
		LocationCity:   req.LocationCity,
		LocationState:  req.LocationState,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		Status:         req.Status,
		Deadline:       deadline,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewJobDTO(job, h.services.Jobs.Now()))
}

// GetJob handles GET /api/v1/jobs/:job_id
func (h *Handler) GetJob(c *gin.Context) {
	jobID, ok := parseID(c, "job_id")
	if !ok {
		return
	}

	job, err := h.services.Jobs.Get(c.Request.Context(), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobDTO(job, h.services.Jobs.Now()))
}

// ListJobs handles GET /api/v1/jobs
func (h *Handler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	cursor, err := DecodeCursor(req.Cursor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.services.Jobs.List(c.Request.Context(), req.Status, cursor, req.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Debug("Listed jobs",
		slog.Int("count", len(page.Items)),
		slog.Bool("has_more", page.Next != nil),
	)

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       dto.NewJobDTOs(page.Items, h.services.Jobs.Now()),
		NextCursor: EncodeCursor(page.Next),
	})
}

// ListEmployerJobs handles GET /api/v1/employer/jobs
func (h *Handler) ListEmployerJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	cursor, err := DecodeCursor(req.Cursor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	page, err := h.services.Jobs.ListMine(c.Request.Context(), identityFrom(c), cursor, req.PageSize)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListJobsResponse{
		Jobs:       dto.NewJobDTOs(page.Items, h.services.Jobs.Now()),
		NextCursor: EncodeCursor(page.Next),
	})
}
