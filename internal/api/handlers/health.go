package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler serves the probes. Only the store can make TaskFlow unready.
type HealthHandler struct {
	db      *gorm.DB
	started time.Time
	version string
}

func NewHealthHandler(db *gorm.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now(), version: version}
}

type Readiness struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Dialect string `json:"dialect"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness answers 503 until the store answers a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	out := Readiness{
		Status:  "ready",
		Store:   "ok",
		Dialect: h.db.Dialector.Name(),
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}
	code := http.StatusOK
	if err := h.ping(c.Request.Context(), 5*time.Second); err != nil {
		out.Status, out.Store = "not ready", err.Error()
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, out)
}

// Health is what `taskflow health` calls.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context(), 3*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *HealthHandler) ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
