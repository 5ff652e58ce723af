package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/pkg/logger"
)

var production atomic.Bool

// SetProduction toggles suppression of internal error detail in response
// bodies. Call once during startup.
func SetProduction(on bool) {
	production.Store(on)
}

// AbortWithError maps a classified error to its HTTP status and writes the
// uniform error envelope. Unclassified errors are logged and, in production,
// replaced by a generic message.
func AbortWithError(c *gin.Context, err error) {
	status := apperrors.StatusCode(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Errorf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if production.Load() {
			msg = "internal server error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "statusCode": status})
}
