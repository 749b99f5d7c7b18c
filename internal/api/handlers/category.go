package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperr"
	"taskflow/internal/events"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

// ListCategories returns every category with its derived taskCount.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.Categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var input model.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Validation(service.MsgCategoryRequired), "Failed to create category")
		return
	}

	category, err := h.Categories.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	h.publish(events.EntityCategory, events.Created, category.ID)
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}
	var patch model.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.Categories.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err, "Failed to update category")
		return
	}
	h.publish(events.EntityCategory, events.Updated, category.ID)
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes the category and, through the FK cascade, its tasks.
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "category")
	if !ok {
		return
	}
	if err := h.Categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}
	h.publish(events.EntityCategory, events.Deleted, id)
	success(c)
}
