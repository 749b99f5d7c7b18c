// Package api assembles the TaskFlow HTTP server.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"taskflow/internal/api/handlers"
	"taskflow/internal/api/middleware"
	"taskflow/internal/auth"
	"taskflow/internal/events"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

// Deps is everything the router needs. Signer and Limiter may be nil.
type Deps struct {
	DB            *gorm.DB
	Hub           *events.Hub
	Signer        *auth.Signer
	Limiter       *middleware.RateLimiter
	AllowedOrigin string
	Version       string
	Logger        *slog.Logger
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	taskRepo := repository.NewTaskRepository(d.DB)
	categoryRepo := repository.NewCategoryRepository(d.DB)
	var pub events.Publisher
	if d.Hub != nil {
		pub = d.Hub
	}
	h := handlers.New(
		service.NewTaskService(taskRepo, categoryRepo),
		service.NewCategoryService(categoryRepo),
		service.NewStatsService(taskRepo, categoryRepo),
		pub,
	)
	health := handlers.NewHealthHandler(d.DB, d.Version)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(d.AllowedOrigin))

	// Health checks and metrics (no auth, no rate limiting)
	r.GET("/health", health.Health)
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Auth(d.Signer))
	api.Use(d.Limiter.Mutations())

	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/:id", h.GetTask)
	api.PUT("/tasks/:id", h.UpdateTask)
	api.PATCH("/tasks/:id", h.UpdateTask)
	api.DELETE("/tasks/:id", h.DeleteTask)

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.CreateCategory)
	api.PUT("/categories/:id", h.UpdateCategory)
	api.PATCH("/categories/:id", h.UpdateCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)

	api.GET("/stats", h.GetStats)

	if d.Hub != nil {
		api.GET("/events", handlers.Events(d.Hub, d.AllowedOrigin))
	}

	return r
}
