package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/taskory/taskory-api/internal/identity"
	"github.com/taskory/taskory-api/internal/models"
	"github.com/taskory/taskory-api/pkg/logger"
	"github.com/taskory/taskory-api/pkg/metrics"
)

// UserSyncer reconciles a verified identity with the local user store.
type UserSyncer interface {
	SyncFromClaims(ctx context.Context, claims *identity.Claims) (*models.User, error)
}

// UserSyncMiddleware keeps the local user record in step with the identity
// provider on every authenticated request, not only on first login. The write
// is best-effort: a failure is counted and logged but must never change the
// HTTP outcome, since the caller's identity was already verified.
func UserSyncMiddleware(s UserSyncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := identity.FromContext(c); ok {
			if _, err := s.SyncFromClaims(c.Request.Context(), claims); err != nil {
				metrics.UserSyncFailures.Inc()
				logger.Errorf("user sync failed for subject %s: %v", claims.Subject, err)
			}
		}
		c.Next()
	}
}
