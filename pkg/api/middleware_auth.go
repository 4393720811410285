package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prismdocs/atlas/pkg/logging"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// authMiddleware validates a Bearer token against the configured HMAC
// secret. With auth disabled every request passes through untouched;
// health and metrics stay open either way so probes keep working.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if !s.cfg.Auth.Enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			s.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "),
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(s.cfg.Auth.Secret), nil
			})
		if err != nil || !token.Valid {
			s.logger.Warn("token rejected", logging.Error(err))
			s.respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		subject, _ := token.Claims.GetSubject()
		ctx := context.WithValue(r.Context(), subjectContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject returns the authenticated subject from a request context,
// empty when auth is disabled
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey).(string)
	return subject
}
