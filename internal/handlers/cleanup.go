package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Sweeper runs one retention pass and reports how many tasks it removed.
type Sweeper interface {
	Run(ctx context.Context) (int64, error)
}

type CleanupHandler struct {
	sweeper Sweeper
}

func NewCleanupHandler(sweeper Sweeper) *CleanupHandler {
	return &CleanupHandler{sweeper: sweeper}
}

func (h *CleanupHandler) CleanupTasks(c *gin.Context) {
	deleted, err := h.sweeper.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Cleanup completed",
		"deletedCount": deleted,
	})
}
