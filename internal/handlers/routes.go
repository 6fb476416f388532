package handlers

import (
	"github.com/gin-gonic/gin"

	"task-tracker/internal/middleware"
	"task-tracker/internal/models"
)

type Routes struct {
	Auth       *AuthHandler
	Tasks      *TaskHandler
	Attendance *AttendanceHandler
	Cleanup    *CleanupHandler
	Events     *EventsHandler
	Health     gin.HandlerFunc
	Metrics    gin.HandlerFunc

	Verifier middleware.TokenVerifier
	// Limiter throttles the unauthenticated account endpoints when set.
	Limiter *middleware.RateLimiter
}

func (r Routes) requireRoles(roles ...string) gin.HandlerFunc {
	return middleware.AuthzMiddleware(middleware.AuthzConfig{Roles: roles}, r.Verifier)
}

func (r Routes) Register(router *gin.Engine) {
	public := router.Group("/")
	if r.Limiter != nil {
		public.Use(r.Limiter.Middleware())
	}
	public.POST("/", r.Auth.Login)
	public.POST("/register", r.Auth.Register)
	public.POST("/forgot", r.Auth.ForgotPassword)

	admin := r.requireRoles(models.RoleAdmin)
	developer := r.requireRoles(models.RoleDeveloper)
	anyone := r.requireRoles(models.RoleAdmin, models.RoleDeveloper)

	router.POST("/create", admin, r.Tasks.CreateTask)

	api := router.Group("/api")
	{
		api.GET("/tasks", anyone, r.Tasks.ListTasks)
		api.GET("/task/:id", anyone, r.Tasks.GetTask)
		api.PUT("/task/:id", admin, r.Tasks.UpdateTask)
		api.PUT("/task/:id/assign", admin, r.Tasks.AssignTask)
		api.PUT("/task/:id/status", anyone, r.Tasks.UpdateTaskStatus)
		api.DELETE("/task/:id", admin, r.Tasks.DeleteTask)

		api.GET("/developers", admin, r.Attendance.ListDevelopers)
		api.GET("/my-attendance", developer, r.Attendance.MyAttendance)
		api.POST("/attendance", developer, r.Attendance.MarkAttendance)

		api.POST("/cleanup-tasks", admin, r.Cleanup.CleanupTasks)
	}

	if r.Health != nil {
		router.GET("/health", r.Health)
	}
	if r.Events != nil {
		router.GET("/events", r.Events.Stream)
	}
	if r.Metrics != nil {
		router.GET("/metrics", admin, r.Metrics)
	}
}
