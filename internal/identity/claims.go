package identity

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskory/taskory-api/internal/apperrors"
)

// ContextKey is the gin context key the auth middleware stores the caller's
// identity under.
const ContextKey = "identity"

// Claims is the normalized identity record extracted from a verified token.
// It is produced fresh per request and never persisted as-is.
type Claims struct {
	Subject           string
	Email             string
	PreferredUsername string
	Name              string
	RealmRoles        []string
	ClientRoles       []string
}

// FromTokenClaims maps verified token claims to a normalized Claims record.
// The subject is mandatory; email and names are optional passthroughs. When
// preferred_username is absent the email is used instead. clientID selects
// which resource_access entry contributes client-scoped roles.
func FromTokenClaims(raw map[string]interface{}, clientID string) (*Claims, error) {
	sub, _ := raw["sub"].(string)
	if sub == "" {
		return nil, apperrors.Unauthenticated()
	}

	email, _ := raw["email"].(string)
	name, _ := raw["name"].(string)
	username, _ := raw["preferred_username"].(string)
	if username == "" {
		username = email
	}

	c := &Claims{
		Subject:           sub,
		Email:             email,
		PreferredUsername: username,
		Name:              name,
	}

	if realm, ok := raw["realm_access"].(map[string]interface{}); ok {
		c.RealmRoles = stringSlice(realm["roles"])
	}
	if res, ok := raw["resource_access"].(map[string]interface{}); ok {
		if client, ok := res[clientID].(map[string]interface{}); ok {
			c.ClientRoles = stringSlice(client["roles"])
		}
	}

	return c, nil
}

// EffectiveRoles returns the union of realm-level and client-scoped roles.
func (c *Claims) EffectiveRoles() []string {
	seen := make(map[string]struct{}, len(c.RealmRoles)+len(c.ClientRoles))
	out := make([]string, 0, len(c.RealmRoles)+len(c.ClientRoles))
	for _, r := range c.RealmRoles {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	for _, r := range c.ClientRoles {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// HasAnyRole reports whether the caller's effective role set intersects
// required. An empty required set always passes.
func (c *Claims) HasAnyRole(required ...string) bool {
	if len(required) == 0 {
		return true
	}
	for _, have := range c.EffectiveRoles() {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}

// UsernameOrLocalPart returns the preferred username, falling back to the
// local part of the email address when no username claim was present.
func (c *Claims) UsernameOrLocalPart() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	if i := strings.Index(c.Email, "@"); i > 0 {
		return c.Email[:i]
	}
	return c.Email
}

// FromContext retrieves the identity the auth middleware attached to the
// request, if any.
func FromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

func stringSlice(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
