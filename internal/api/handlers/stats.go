package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Stats.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}
