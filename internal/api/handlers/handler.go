// Package handlers holds the gin handlers of the TaskFlow API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/events"
	"taskflow/internal/logger"
	"taskflow/internal/service"
)

type Handler struct {
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Stats      *service.StatsService
	Events     events.Publisher
}

func New(tasks *service.TaskService, categories *service.CategoryService, stats *service.StatsService, pub events.Publisher) *Handler {
	return &Handler{Tasks: tasks, Categories: categories, Stats: stats, Events: pub}
}

// respondError writes the taxonomy message and status for err. Causes of
// persistence failures are logged and never sent to the caller.
func respondError(c *gin.Context, err error, fallback string) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(fallback, "error", err)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err, fallback)})
}

func parseID(c *gin.Context, entity string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + entity + " id"})
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) publish(entity string, action events.Action, id uint) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(events.Event{Entity: entity, Action: action, ID: id})
}

func success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
