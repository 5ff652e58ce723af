package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/identity"
	"github.com/taskory/taskory-api/pkg/metrics"
)

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (*identity.Claims, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using
// the provided verifier and attaches the normalized identity to the request
// context. Every rejection is the same generic 401: callers never learn which
// check failed. Public routes simply do not carry this middleware.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			metrics.AuthOutcomes.WithLabelValues("unauthenticated").Inc()
			AbortWithError(c, apperrors.Unauthenticated())
			return
		}

		claims, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			metrics.AuthOutcomes.WithLabelValues("unauthenticated").Inc()
			AbortWithError(c, apperrors.Unauthenticated())
			return
		}

		metrics.AuthOutcomes.WithLabelValues("authenticated").Inc()
		c.Set(identity.ContextKey, claims)
		c.Next()
	}
}

// RequireRoles returns a middleware enforcing that the caller's effective
// role set (realm and client roles combined) intersects the required set.
// At least one match admits; authentication and authorization failures stay
// distinct outcomes.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := identity.FromContext(c)
		if !ok {
			metrics.AuthOutcomes.WithLabelValues("unauthenticated").Inc()
			AbortWithError(c, apperrors.Unauthenticated())
			return
		}
		if !claims.HasAnyRole(roles...) {
			metrics.AuthOutcomes.WithLabelValues("forbidden").Inc()
			AbortWithError(c, apperrors.Forbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
