package endpoint

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Info returns a handler that reports the service name, its version and
// uptime.
func Info(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    serviceName,
			"version":    version,
			"go_version": runtime.Version(),
			"uptime":     time.Since(startTime).Round(time.Second).String(),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		})
	}
}
