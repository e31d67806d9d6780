package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/benisnotitdog/task-manager-api/internal/logger"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        Pinger
	startTime time.Time
	version   string
}

func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		version:   version,
	}
}

// ReadinessReport is the body of GET /readyz.
type ReadinessReport struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to Task Manager API",
		"version": h.version,
		"health":  "/health",
	})
}

// Liveness never touches dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness reports per-dependency state and 503 when the database is unreachable.
func (h *HealthHandler) Readiness(c *gin.Context) {
	dbErr := h.pingDB(c.Request.Context(), 5*time.Second)

	report := ReadinessReport{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks: map[string]string{
			"database":        "healthy",
			"memory_alloc_mb": allocMB(),
		},
	}
	code := http.StatusOK
	if dbErr != nil {
		report.Status = "unhealthy"
		report.Checks["database"] = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, report)
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.pingDB(c.Request.Context(), 3*time.Second); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *HealthHandler) pingDB(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := h.db.Ping(ctx)
	if err != nil {
		logger.WithContext(ctx).Warn("database ping failed", "error", err)
	}
	return err
}

func allocMB() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return fmt.Sprintf("%.2f", float64(m.Alloc)/1024/1024)
}
