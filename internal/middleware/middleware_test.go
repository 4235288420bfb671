package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unicef/hope-grievance/internal/models"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(actor.ID + "|" + actor.Name))
	})
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(secret)(actorEcho())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized},
		{
			name:   "wrong secret",
			header: "Bearer " + func() string { s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("other")); return s }(),
			status: http.StatusUnauthorized,
		},
		{
			name:   "no subject",
			header: "Bearer " + sign(t, jwt.MapClaims{"name": "Ana"}),
			status: http.StatusUnauthorized,
		},
		{
			name:   "expired",
			header: "Bearer " + sign(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()}),
			status: http.StatusUnauthorized,
		},
		{
			name:   "valid",
			header: "Bearer " + sign(t, jwt.MapClaims{"sub": "u1", "name": "Ana"}),
			status: http.StatusOK,
			body:   "u1|Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRateLimitPerActor(t *testing.T) {
	h := RateLimit(2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	do := func(actor string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req = req.WithContext(WithActor(req.Context(), models.Actor{ID: actor}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusOK, do("a"))
	assert.Equal(t, http.StatusTooManyRequests, do("a"))
	assert.Equal(t, http.StatusOK, do("b"))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
