package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/skillsprint/roadmap-api/internal/domain"
	"github.com/skillsprint/roadmap-api/internal/ports/out/identity"
)

const bearerPrefix = "Bearer "

// NewAuthMiddleware enforces Authorization: Bearer <ID token> on the routes it wraps.
//
// The scheme prefix is exact (case-sensitive, single space); anything else is a missing token and
// the verifier is not called. On success the Claim is stored in request context.
func NewAuthMiddleware(v identity.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			token, ok := bearerToken(authz)
			if !ok {
				writeAuthError(w, r, identity.ReasonMissingToken)
				return
			}

			claim, err := v.Verify(r.Context(), token)
			if err != nil {
				reason := identity.ReasonOf(err)
				log.Warn("token verification failed", zap.String("reason", string(reason)), zap.Error(err))
				writeAuthError(w, r, reason)
				return
			}

			reportSubject(r.Context(), claim.Subject)
			next.ServeHTTP(w, r.WithContext(WithClaim(r.Context(), claim)))
		})
	}
}

// bearerToken returns the token of an exact "Bearer <token>" header value.
func bearerToken(authz string) (string, bool) {
	token, ok := strings.CutPrefix(authz, bearerPrefix)
	if !ok || token == "" || strings.TrimLeft(token, " \t") != token {
		return "", false
	}
	return token, true
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit subject via X-Debug-Subject (and optional X-Debug-Email) and stores it in
// request context. If the header is absent, it falls back to defaultSubject (if provided).
//
// This is intended for local workflows without a Firebase project. Do NOT use this in production deployments.
func NewDevAuthMiddleware(defaultSubject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := strings.TrimSpace(r.Header.Get("X-Debug-Subject"))
			if sub == "" {
				sub = strings.TrimSpace(defaultSubject)
			}
			if sub == "" {
				writeAuthError(w, r, identity.ReasonMissingToken)
				return
			}
			email := strings.TrimSpace(r.Header.Get("X-Debug-Email"))
			claim := domain.Claim{Subject: domain.SubjectID(sub), Email: email, EmailVerified: email != ""}
			reportSubject(r.Context(), claim.Subject)
			next.ServeHTTP(w, r.WithContext(WithClaim(r.Context(), claim)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, r *http.Request, reason identity.Reason) {
	if reason == identity.ReasonMissingToken {
		writeError(w, r, http.StatusUnauthorized,
			"No token provided or invalid format",
			"Please provide a valid Firebase ID token in Authorization header")
		return
	}
	writeError(w, r, http.StatusUnauthorized,
		"Invalid or expired token",
		"Please login again to get a fresh token")
}
