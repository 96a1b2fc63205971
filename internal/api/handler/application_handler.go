package handler

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/gin-gonic/gin"
)

// CreateApplication handles POST /api/v1/applications
func (h *Handler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	app, err := h.services.Applications.Create(c.Request.Context(), identityFrom(c), service.CreateApplicationInput{
		JobID:         req.JobID,
		CoverLetter:   req.CoverLetter,
		PortfolioLink: req.PortfolioLink,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewApplicationDTO(app))
}

// ListApplications handles GET /api/v1/applications
func (h *Handler) ListApplications(c *gin.Context) {
	apps, err := h.services.Applications.List(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationDTOs(apps))
}

// GetApplication handles GET /api/v1/applications/:application_id
func (h *Handler) GetApplication(c *gin.Context) {
	id, ok := parseID(c, "application_id")
	if !ok {
		return
	}

	app, err := h.services.Applications.Get(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationDTO(app))
}

// UpdateApplicationStatus handles PATCH /api/v1/applications/:application_id
func (h *Handler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := parseID(c, "application_id")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	app, err := h.services.Applications.UpdateStatus(c.Request.Context(), identityFrom(c), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationDTO(app))
}

// ListJobApplications handles GET /api/v1/jobs/:job_id/applications
func (h *Handler) ListJobApplications(c *gin.Context) {
	jobID, ok := parseID(c, "job_id")
	if !ok {
		return
	}

	apps, err := h.services.Applications.ListForJob(c.Request.Context(), identityFrom(c), jobID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewApplicationDTOs(apps))
}
