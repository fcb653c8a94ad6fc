// Package httpapi holds the JWT-bearer auth middleware and small JSON
// helpers shared by cmd/poold and cmd/backstopd, the way the teacher shares
// gateway/middleware across its own services rather than duplicating a
// per-service auth stack.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"blendpool/config"
)

type contextKey string

const subjectContextKey contextKey = "blendpool.subject"

// Authenticator validates bearer JWTs signed with a shared HMAC secret and
// checks the issuer against the configured allow-list; the audience claim
// is not checked.
type Authenticator struct {
	secret  []byte
	issuers map[string]struct{}
	log     *slog.Logger
}

// NewAuthenticator builds an Authenticator from daemon config.
func NewAuthenticator(cfg config.AuthConfig, log *slog.Logger) *Authenticator {
	issuers := make(map[string]struct{}, len(cfg.AllowedIssuers))
	for _, iss := range cfg.AllowedIssuers {
		iss = strings.TrimSpace(iss)
		if iss != "" {
			issuers[iss] = struct{}{}
		}
	}
	return &Authenticator{secret: []byte(cfg.JWTSigningKey), issuers: issuers, log: log}
}

// Middleware rejects requests without a valid bearer token and stores the
// token's subject claim in the request context for handlers to read via
// SubjectFromContext.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, prefix))
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			a.log.Warn("rejected request", "reason", "invalid token", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		if len(a.issuers) > 0 {
			iss, _ := claims.GetIssuer()
			if _, ok := a.issuers[iss]; !ok {
				writeError(w, http.StatusUnauthorized, "unrecognized issuer")
				return
			}
		}
		subject, _ := claims.GetSubject()
		ctx := context.WithValue(r.Context(), subjectContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromContext returns the authenticated caller's JWT subject claim,
// used as the acting user address for Submit/Deposit/etc requests.
func SubjectFromContext(ctx context.Context) string {
	subject, _ := ctx.Value(subjectContextKey).(string)
	return subject
}
