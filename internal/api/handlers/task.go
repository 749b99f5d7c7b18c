package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/events"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

func (h *Handler) ListTasks(c *gin.Context) {
	tasks, err := h.Tasks.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := parseID(c, "task")
	if !ok {
		return
	}
	task, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var input model.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation(service.MsgTaskRequired), "Failed to create task")
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create task")
		return
	}
	h.publish(events.EntityTask, events.Created, task.ID)
	c.JSON(http.StatusCreated, task)
}

// UpdateTask serves both PUT and PATCH; absent fields are left unchanged.
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "task")
	if !ok {
		return
	}
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "Failed to update task")
		return
	}
	h.publish(events.EntityTask, events.Updated, task.ID)
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "task")
	if !ok {
		return
	}
	if err := h.Tasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}
	h.publish(events.EntityTask, events.Deleted, id)
	success(c)
}
