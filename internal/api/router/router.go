package router

import (
	"net/http"

	"github.com/cuongbtq/jobboard-be/internal/api/handler"
	"github.com/gin-gonic/gin"
)

// Options carries what the router needs beyond the handler dependencies.
type Options struct {
	Tokens         TokenVerifier
	AllowedOrigins []string
	AuthLimiter    *LimiterStore
	MessageLimiter *LimiterStore
	Ready          func() error
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if opts.Ready != nil {
			if err := opts.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unhealthy",
					"service": "jobboard-api-service",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "jobboard-api-service",
		})
	})

	h := handler.New(deps)
	authenticated := AuthMiddleware(opts.Tokens, false)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/auth")
		{
			limited := RateLimitMiddleware(opts.AuthLimiter, ByClientIP)
			accounts.POST("/register", limited, h.Register)
			accounts.POST("/login", limited, h.Login)
			accounts.GET("/me", authenticated, h.Me)
		}

		v1.GET("/users/search", authenticated, h.SearchUsers)

		jobs := v1.Group("/jobs")
		{
			jobs.GET("", h.ListJobs)
			jobs.POST("", authenticated, h.CreateJob)
			jobs.GET("/:job_id", h.GetJob)
			jobs.GET("/:job_id/applications", authenticated, h.ListJobApplications)
		}

		v1.GET("/employer/jobs", authenticated, h.ListEmployerJobs)

		applications := v1.Group("/applications", authenticated)
		{
			applications.POST("", h.CreateApplication)
			applications.GET("", h.ListApplications)
			applications.GET("/:application_id", h.GetApplication)
			applications.PATCH("/:application_id", h.UpdateApplicationStatus)
		}

		messages := v1.Group("/messages", authenticated)
		{
			messages.POST("", RateLimitMiddleware(opts.MessageLimiter, ByUser), h.SendMessage)
			messages.GET("/unread-count", h.UnreadMessageCount)
			messages.GET("/:user_id", h.GetThread)
			messages.POST("/:user_id/read", h.MarkThreadRead)
		}

		v1.GET("/conversations", authenticated, h.ListConversations)

		notifications := v1.Group("/notifications", authenticated)
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.UnreadNotificationCount)
			notifications.POST("/mark-all-read", h.MarkAllNotificationsRead)
			notifications.POST("/:id/read", h.MarkNotificationRead)
		}

		v1.GET("/ws/notifications", AuthMiddleware(opts.Tokens, true), h.NotificationSocket)
	}

	return r
}
