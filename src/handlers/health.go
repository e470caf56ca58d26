package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint; overridden at build time
var Version = "dev"

// HealthChecker is implemented by dependencies that can be probed.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthDeps are the dependencies probed by the health endpoint. DiskPath is
// the local blob root; it is empty when blobs live in object storage.
type HealthDeps struct {
	DB       HealthChecker
	Redis    HealthChecker
	Blobs    HealthChecker
	DiskPath string
}

func probe(ctx context.Context, name string, checker HealthChecker, logger *logrus.Logger) bool {
	if checker == nil {
		logger.WithField("dependency", name).Error("Health check skipped: dependency not provided")
		return false
	}
	if err := checker.HealthCheck(ctx); err != nil {
		logger.WithError(err).WithField("dependency", name).Error("Health check failed")
		return false
	}
	return true
}

// Health godoc
// @Summary Health check endpoint
// @Description Returns API health status and dependency information
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Health status information"
// @Failure 503 {object} map[string]interface{} "Dependency unavailable"
// @Router /health [get]
func Health(deps HealthDeps, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dependencies := gin.H{}
		healthy := true

		for _, dep := range []struct {
			name    string
			checker HealthChecker
		}{
			{"database", deps.DB},
			{"redis", deps.Redis},
			{"blob_store", deps.Blobs},
		} {
			if probe(ctx, dep.name, dep.checker, logger) {
				dependencies[dep.name] = "ok"
			} else {
				dependencies[dep.name] = "unhealthy"
				healthy = false
			}
		}

		status := gin.H{
			"status":       "ok",
			"timestamp":    time.Now().Format(time.RFC3339),
			"service":      "drive-api",
			"version":      Version,
			"dependencies": dependencies,
		}

		if deps.DiskPath != "" {
			usage, err := disk.UsageWithContext(ctx, deps.DiskPath)
			if err != nil {
				logger.WithError(err).WithField("path", deps.DiskPath).Warn("Disk usage unavailable")
			} else {
				status["disk_total"] = usage.Total
				status["disk_used"] = usage.Used
				status["disk_free"] = usage.Free
			}
		}

		if !healthy {
			status["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}

		c.JSON(http.StatusOK, status)
	}
}
