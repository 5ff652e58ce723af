package oidc

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/config"
	"github.com/taskory/taskory-api/internal/identity"
	"github.com/taskory/taskory-api/pkg/logger"
)

// Verifier validates Keycloak-issued bearer tokens against the realm JWKS and
// maps their claims to a normalized identity record.
type Verifier struct {
	jwks      *keyfunc.JWKS
	issuer    string
	audiences []string
	clientID  string
}

// NewVerifier discovers the realm's JWKS endpoint and starts a rate-limited
// key cache. An unknown key id triggers at most one refresh, and background
// refreshes are bounded to cfg.JWKSRequestsPerMinute fetches per minute.
func NewVerifier(ctx context.Context, cfg config.KeycloakConfig) (*Verifier, error) {
	issuer := cfg.Issuer()

	jwks, err := keyfunc.Get(discoverJWKSURI(ctx, cfg), keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			logger.Warnf("background JWKS refresh failed: %v", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute / time.Duration(cfg.JWKSRequestsPerMinute),
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	return &Verifier{
		jwks:      jwks,
		issuer:    issuer,
		audiences: []string{cfg.ClientID, "account"},
		clientID:  cfg.ClientID,
	}, nil
}

// discoverJWKSURI asks the provider's OIDC discovery document for jwks_uri and
// falls back to the well-known Keycloak certs path when discovery fails.
func discoverJWKSURI(ctx context.Context, cfg config.KeycloakConfig) string {
	provider, err := gooidc.NewProvider(ctx, cfg.Issuer())
	if err != nil {
		logger.Warnf("OIDC discovery failed, using default certs endpoint: %v", err)
		return cfg.JWKSURI()
	}
	var doc struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&doc); err != nil || doc.JWKSURI == "" {
		return cfg.JWKSURI()
	}
	return doc.JWKSURI
}

// Verify checks the token's RS256 signature, issuer, audience and expiry,
// then extracts the normalized identity. Every failure collapses into the
// same generic Unauthenticated outcome so callers cannot probe which check
// rejected the token.
func (v *Verifier) Verify(ctx context.Context, raw string) (*identity.Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		logger.Debugf("token verification failed: %v", err)
		return nil, apperrors.Unauthenticated()
	}

	if !v.audienceAllowed(claims) {
		logger.Debugf("token audience mismatch")
		return nil, apperrors.Unauthenticated()
	}

	return identity.FromTokenClaims(claims, v.clientID)
}

// Close stops the background JWKS refresh goroutine.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// audienceAllowed accepts the token when its aud claim intersects the
// expected set (the client id or Keycloak's built-in "account" audience).
func (v *Verifier) audienceAllowed(claims jwt.MapClaims) bool {
	aud, err := claims.GetAudience()
	if err != nil || len(aud) == 0 {
		return false
	}
	for _, got := range aud {
		for _, want := range v.audiences {
			if got == want {
				return true
			}
		}
	}
	return false
}
