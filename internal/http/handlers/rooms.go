package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bananas_server/internal/domain"
	"bananas_server/internal/logger"
	"bananas_server/internal/ws"

	"github.com/gin-gonic/gin"
)

// GetRoom serves the public snapshot of a live room for lobby screens.
func (h *Handler) GetRoom(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	state, err := h.Rooms.Snapshot(ctx, c.Param("id"))
	switch {
	case errors.Is(err, ws.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
	case err != nil:
		logger.Warn("room snapshot failed", "room", c.Param("id"), "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room busy"})
	default:
		c.JSON(http.StatusOK, state)
	}
}

// RecentResults lists finished games, optionally for one room.
func (h *Handler) RecentResults(c *gin.Context) {
	if h.Results == nil {
		c.JSON(http.StatusOK, gin.H{"results": []*domain.GameResult{}})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	results, err := h.Results.Recent(c.Request.Context(), c.Query("room_id"), limit)
	if err != nil {
		logger.Error("list game results", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load results"})
		return
	}
	if results == nil {
		results = []*domain.GameResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
