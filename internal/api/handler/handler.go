package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/cuongbtq/jobboard-be/internal/realtime"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// IdentityKey is the gin context key the auth middleware stores the caller under.
const IdentityKey = "identity"

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Services *service.Services
	Hub      *realtime.Hub
	Upgrader *websocket.Upgrader
	// Lifetime is canceled when the server shuts down; open websockets close with 1001.
	Lifetime context.Context
}

// Handler serves every /api/v1 endpoint
type Handler struct {
	logger   *slog.Logger
	services *service.Services
	hub      *realtime.Hub
	upgrader *websocket.Upgrader
	lifetime context.Context
}

// New creates a new Handler instance
func New(deps *Dependencies) *Handler {
	upgrader := deps.Upgrader
	if upgrader == nil {
		upgrader = &websocket.Upgrader{}
	}
	lifetime := deps.Lifetime
	if lifetime == nil {
		lifetime = context.Background()
	}
	return &Handler{
		logger:   deps.Logger,
		services: deps.Services,
		hub:      deps.Hub,
		upgrader: upgrader,
		lifetime: lifetime,
	}
}

func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

// parseID reads a positive integer path parameter, answering 400 itself when it is malformed.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": name + " must be a positive integer",
		})
		return 0, false
	}
	return id, true
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid request body",
	})
}

// respondError maps service errors onto HTTP statuses. Anything unrecognised is
// logged and reported as a 500 without details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		permissionErr *domain.PermissionError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"errors": gin.H{validationErr.Field: []string{validationErr.Message}},
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, gin.H{"error": permissionErr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "The resource was modified by another request. Reload and try again."})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
