// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"aegisgate/platform/shared/logger"
)

// Principal is the authenticated caller attached to the request
// context.
type Principal struct {
	ClientID    string
	TenantID    string
	Permissions []string
}

type principalKey struct{}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// clientRateLimit is the per-client request budget per minute.
const clientRateLimit = 1000

// rateLimitEntry tracks request counts within a sliding one-minute
// window.
type rateLimitEntry struct {
	count     int
	resetTime time.Time
}

// authenticator validates API keys and JWT bearer tokens. With neither
// credential configured the gateway runs open; construction logs a
// warning so that state is visible.
type authenticator struct {
	apiKey    string
	jwtSecret []byte
	log       *logger.Logger

	mu     sync.Mutex
	limits map[string]*rateLimitEntry
}

func newAuthenticator(apiKey, jwtSecret string, log *logger.Logger) *authenticator {
	a := &authenticator{
		apiKey: apiKey,
		log:    log,
		limits: make(map[string]*rateLimitEntry),
	}
	if jwtSecret != "" {
		a.jwtSecret = []byte(jwtSecret)
	}
	if apiKey == "" && jwtSecret == "" {
		log.Warn("no API key or JWT secret configured, gateway is running open", nil)
	}
	return a
}

func (a *authenticator) open() bool {
	return a.apiKey == "" && a.jwtSecret == nil
}

// middleware authenticates the request and attaches the principal.
func (a *authenticator) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.authenticate(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintf(w, `{"error":%q}`+"\n", err.Error())
			return
		}

		if err := a.checkRateLimit(principal.ClientID); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprintf(w, `{"error":%q}`+"\n", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *authenticator) authenticate(r *http.Request) (*Principal, error) {
	if a.open() {
		return &Principal{ClientID: "anonymous"}, nil
	}

	if key := r.Header.Get("X-API-Key"); key != "" {
		if a.apiKey != "" && key == a.apiKey {
			return &Principal{ClientID: "api-key"}, nil
		}
		return nil, fmt.Errorf("invalid API key")
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") && a.jwtSecret != nil {
		return a.validateToken(strings.TrimPrefix(authHeader, "Bearer "))
	}

	return nil, fmt.Errorf("missing credentials")
}

// validateToken parses and verifies an HS256 JWT and extracts the
// principal from its claims.
func (a *authenticator) validateToken(tokenString string) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	clientID := getClaimString(claims, "client_id")
	if clientID == "" {
		clientID = getClaimString(claims, "sub")
	}
	if clientID == "" {
		return nil, fmt.Errorf("token carries no client identity")
	}

	return &Principal{
		ClientID:    clientID,
		TenantID:    getClaimString(claims, "tenant_id"),
		Permissions: getClaimStringArray(claims, "permissions"),
	}, nil
}

// checkRateLimit enforces the per-client request budget.
func (a *authenticator) checkRateLimit(clientID string) error {
	now := time.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	entry, exists := a.limits[clientID]
	if !exists || now.After(entry.resetTime) {
		a.limits[clientID] = &rateLimitEntry{count: 1, resetTime: now.Add(time.Minute)}
		return nil
	}

	entry.count++
	if entry.count > clientRateLimit {
		return fmt.Errorf("rate limit exceeded: %d requests/minute (limit: %d)", entry.count, clientRateLimit)
	}
	return nil
}

func getClaimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func getClaimStringArray(claims jwt.MapClaims, key string) []string {
	raw, ok := claims[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
