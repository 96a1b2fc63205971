package handler

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/dto"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/gin-gonic/gin"
)

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.services.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            req.Role,
		FullName:        req.FullName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAuthResponse(result))
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	result, err := h.services.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAuthResponse(result))
}

// Me handles GET /api/v1/auth/me
func (h *Handler) Me(c *gin.Context) {
	user, err := h.services.Accounts.Me(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserDTO(user))
}

// SearchUsers handles GET /api/v1/users/search?search=
func (h *Handler) SearchUsers(c *gin.Context) {
	users, err := h.services.Accounts.Search(c.Request.Context(), identityFrom(c), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserDTO(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}
