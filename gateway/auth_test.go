// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegisgate/platform/config"
	"aegisgate/platform/shared/logger"
)

const testJWTSecret = "test-secret-for-gateway-auth"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func newSecuredApp(t *testing.T) *App {
	return newTestApp(t, func(cfg *config.GatewayConfig) {
		cfg.Server.APIKey = "gateway-key"
		cfg.Server.JWTSecret = testJWTSecret
	})
}

func TestAuthMissingCredentials(t *testing.T) {
	app := newSecuredApp(t)

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidAPIKey(t *testing.T) {
	app := newSecuredApp(t)

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"},
		map[string]string{"X-API-Key": "gateway-key"})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthWrongAPIKey(t *testing.T) {
	app := newSecuredApp(t)

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"},
		map[string]string{"X-API-Key": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthValidJWT(t *testing.T) {
	app := newSecuredApp(t)
	token := signToken(t, jwt.MapClaims{
		"client_id": "agent-7",
		"tenant_id": "tenant-a",
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"},
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthExpiredJWT(t *testing.T) {
	app := newSecuredApp(t)
	token := signToken(t, jwt.MapClaims{
		"client_id": "agent-7",
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"},
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWTWrongSecret(t *testing.T) {
	app := newSecuredApp(t)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"client_id": "x"})
	signed, err := token.SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"},
		map[string]string{"Authorization": "Bearer " + signed})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWTWithoutIdentity(t *testing.T) {
	app := newSecuredApp(t)
	token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"},
		map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthOpenModeWithoutCredentials(t *testing.T) {
	app := newTestApp(t, nil)

	rec := doJSON(t, app.Router(), "POST", "/api/v1/validate/input",
		map[string]string{"content": "hello"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code, "gateway without configured credentials runs open")
}

func TestCheckRateLimit(t *testing.T) {
	a := newAuthenticator("key", "", logger.NewNull())

	for i := 0; i < clientRateLimit; i++ {
		require.NoError(t, a.checkRateLimit("client-1"))
	}
	err := a.checkRateLimit("client-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")

	assert.NoError(t, a.checkRateLimit("client-2"), "limits are per client")
}

func TestPrincipalFromContext(t *testing.T) {
	app := newSecuredApp(t)
	token := signToken(t, jwt.MapClaims{
		"client_id":   "agent-7",
		"tenant_id":   "tenant-a",
		"permissions": []string{"validate", "query"},
		"exp":         time.Now().Add(time.Hour).Unix(),
	})

	principal, err := app.auth.validateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", principal.ClientID)
	assert.Equal(t, "tenant-a", principal.TenantID)
	assert.Equal(t, []string{"validate", "query"}, principal.Permissions)
}
