package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/taskory/taskory-api/internal/apperrors"
	"github.com/taskory/taskory-api/internal/config"
)

const testKID = "test-key"

// fakeKeycloak serves the realm discovery document and JWKS for a test realm.
func fakeKeycloak(t *testing.T, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/realms/test/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		issuer := srv.URL + "/realms/test"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":   issuer,
			"jwks_uri": issuer + "/protocol/openid-connect/certs",
			"authorization_endpoint": issuer + "/protocol/openid-connect/auth",
			"token_endpoint":         issuer + "/protocol/openid-connect/token",
		})
	})
	mux.HandleFunc("/realms/test/protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]interface{}{{
				"kty": "RSA",
				"kid": testKID,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testKeycloakConfig(srv *httptest.Server) config.KeycloakConfig {
	return config.KeycloakConfig{
		URL:      srv.URL,
		Realm:    "test",
		ClientID: "demo-backend",
		// keep the unknown-kid refresh wait negligible in tests
		JWKSRequestsPerMinute: 600,
	}
}

type tokenOverrides struct {
	issuer   string
	audience interface{}
	expires  time.Time
	kid      string
}

func mintToken(t *testing.T, key *rsa.PrivateKey, issuer string, o tokenOverrides) string {
	t.Helper()

	if o.issuer == "" {
		o.issuer = issuer
	}
	if o.audience == nil {
		o.audience = "account"
	}
	if o.expires.IsZero() {
		o.expires = time.Now().Add(5 * time.Minute)
	}
	if o.kid == "" {
		o.kid = testKID
	}

	claims := jwt.MapClaims{
		"iss":                o.issuer,
		"aud":                o.audience,
		"exp":                o.expires.Unix(),
		"iat":                time.Now().Unix(),
		"sub":                "f3a2a1c0-0000-4000-8000-000000000001",
		"email":              "jane@example.com",
		"preferred_username": "jane",
		"realm_access":       map[string]interface{}{"roles": []string{"user"}},
		"resource_access": map[string]interface{}{
			"demo-backend": map[string]interface{}{"roles": []string{"admin"}},
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = o.kid
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestVerifierAcceptsValidToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := fakeKeycloak(t, &key.PublicKey)

	cfg := testKeycloakConfig(srv)
	ver, err := NewVerifier(context.Background(), cfg)
	require.NoError(t, err)
	defer ver.Close()

	raw := mintToken(t, key, cfg.Issuer(), tokenOverrides{})
	claims, err := ver.Verify(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "f3a2a1c0-0000-4000-8000-000000000001", claims.Subject)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, "jane", claims.PreferredUsername)
	require.Contains(t, claims.EffectiveRoles(), "admin")
	require.Contains(t, claims.EffectiveRoles(), "user")
}

func TestVerifierAcceptsClientIDAudience(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := fakeKeycloak(t, &key.PublicKey)

	cfg := testKeycloakConfig(srv)
	ver, err := NewVerifier(context.Background(), cfg)
	require.NoError(t, err)
	defer ver.Close()

	raw := mintToken(t, key, cfg.Issuer(), tokenOverrides{audience: []string{"demo-backend", "other"}})
	_, err = ver.Verify(context.Background(), raw)
	require.NoError(t, err)
}

func TestVerifierRejections(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := fakeKeycloak(t, &key.PublicKey)

	cfg := testKeycloakConfig(srv)
	ver, err := NewVerifier(context.Background(), cfg)
	require.NoError(t, err)
	defer ver.Close()

	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cases := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-jwt"},
		{"expired", mintToken(t, key, cfg.Issuer(), tokenOverrides{expires: time.Now().Add(-time.Minute)})},
		{"wrong issuer", mintToken(t, key, "https://evil.example.com/realms/test", tokenOverrides{})},
		{"wrong audience", mintToken(t, key, cfg.Issuer(), tokenOverrides{audience: "some-other-client"})},
		{"unknown signing key", mintToken(t, otherKey, cfg.Issuer(), tokenOverrides{kid: "rogue-key"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ver.Verify(context.Background(), tc.raw)
			require.Error(t, err)
			// every rejection collapses into the same generic outcome
			require.Equal(t, apperrors.KindUnauthenticated, apperrors.KindOf(err))
			require.Equal(t, apperrors.ErrUnauthenticated.Error(), err.Error())
		})
	}
}

func TestInsecureVerifierParsesPayloadOnly(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	raw := mintToken(t, key, "http://localhost:8080/realms/test", tokenOverrides{})
	ver := NewInsecureVerifier("demo-backend")

	claims, err := ver.Verify(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, "jane", claims.PreferredUsername)

	_, err = ver.Verify(context.Background(), "nonsense")
	require.Error(t, err)
}

func TestDiscoverJWKSURIFallsBack(t *testing.T) {
	cfg := config.KeycloakConfig{URL: "http://127.0.0.1:1", Realm: "test", ClientID: "demo-backend"}
	got := discoverJWKSURI(context.Background(), cfg)
	require.Equal(t, fmt.Sprintf("%s/realms/test/protocol/openid-connect/certs", cfg.URL), got)
}
