package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/identity"
	"github.com/taskory/taskory-api/pkg/middleware"
)

// AuthHandler serves the auth-facing endpoints: a public health probe and the
// authenticated profile view.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// RegisterPublic mounts routes that do not require a token.
func (h *AuthHandler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/auth/health", h.Health)
}

// Register mounts routes behind the auth middleware.
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/auth/profile", h.Profile)
}

func (h *AuthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Profile echoes the caller's verified identity.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := identity.FromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.Unauthenticated())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sub":      claims.Subject,
		"email":    claims.Email,
		"username": claims.UsernameOrLocalPart(),
		"name":     claims.Name,
		"roles":    claims.EffectiveRoles(),
	})
}
