package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks. *pgxpool.Pool and the
// redis limiter both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RoomCounter reports live rooms.
type RoomCounter interface {
	RoomCount() int
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	deps      map[string]Pinger
	rooms     RoomCounter
	startTime time.Time
	version   string
}

// NewHealthHandler creates a health handler. deps holds only the optional
// backends that are actually configured.
func NewHealthHandler(version string, rooms RoomCounter, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		deps:      deps,
		rooms:     rooms,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Liveness is a static probe. Rooms live in memory, so the process being up
// is all that matters.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness returns detailed health status (for k8s readiness probe)
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allHealthy := true

	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			checks[name] = "healthy"
		}
	}

	if h.rooms != nil {
		checks["rooms"] = strconv.Itoa(h.rooms.RoomCount())
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	checks["memory_alloc_mb"] = formatMB(m.Alloc)

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func formatMB(bytes uint64) string {
	mb := float64(bytes) / 1024 / 1024
	return fmt.Sprintf("%.2f", mb)
}
