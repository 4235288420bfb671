// Package middleware provides HTTP middleware for the grievance server.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/unicef/hope-grievance/internal/models"
	"go.uber.org/zap"
)

type contextKey struct{}

var actorKey contextKey

// ActorFromContext returns the authenticated actor of a request.
func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	a, ok := ctx.Value(actorKey).(models.Actor)
	return a, ok
}

// WithActor returns ctx carrying actor.
func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// StructuredLogger returns a middleware that logs HTTP requests with zap
func StructuredLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			actor, _ := ActorFromContext(r.Context())
			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.statusCode),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", r.Header.Get("X-Request-ID")),
				zap.String("actor", actor.ID),
			)
		})
	}
}

// SecurityHeaders sets response headers for an API that only serves JSON.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth validates HS256 JWT tokens and puts the actor named by the
// sub and name claims into the request context.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "Authorization required")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				writeError(w, http.StatusUnauthorized, "Token has no subject")
				return
			}
			name, _ := claims["name"].(string)

			ctx := WithActor(r.Context(), models.Actor{ID: sub, Name: name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit implements a simple in-memory fixed-window limiter keyed by
// actor, or by path for anonymous requests.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	type client struct {
		count    int
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			mu.Lock()
			for key, c := range clients {
				if time.Since(c.lastSeen) > 2*time.Minute {
					delete(clients, key)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "path:" + r.URL.Path
			if actor, ok := ActorFromContext(r.Context()); ok {
				key = "actor:" + actor.ID
			}

			mu.Lock()
			c, exists := clients[key]
			if !exists {
				clients[key] = &client{count: 1, lastSeen: time.Now()}
				mu.Unlock()
				next.ServeHTTP(w, r)
				return
			}

			if time.Since(c.lastSeen) > time.Minute {
				c.count = 1
				c.lastSeen = time.Now()
			} else {
				c.count++
			}

			if c.count > requestsPerMinute {
				mu.Unlock()
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error": "` + msg + `"}`))
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
