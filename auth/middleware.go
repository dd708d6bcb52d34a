package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/ticx-go/apperror"
)

// RequireBasic guards the login scope. It extracts Basic credentials from
// the Authorization header, verifies them against the store, and forwards
// the verified identity through the request context. Any failure
// short-circuits the chain with the mapped error response; the wrapped
// handler never runs.
func RequireBasic(svc *Service, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(AuthorizationHeader)
			if header == "" {
				WriteError(w, r, apperror.NewMissingAuthHeader())
				return
			}

			creds, err := ParseBasicCredentials(header)
			if err != nil {
				log.Warn("rejected malformed authorization header",
					"path", r.URL.Path, "error", err)
				WriteError(w, r, err)
				return
			}

			user, err := svc.VerifyCredentials(r.Context(), creds)
			if err != nil {
				// VerifyCredentials logged any server-side cause already.
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithUser(r.Context(), user)))
		})
	}
}

// RequireToken guards the API scope. The Authorization header must be
// "<scheme> <token>" with a single space; the scheme itself is not
// inspected. Verification failures are logged with their precise cause
// but collapse to one invalid-credentials response, so callers learn
// nothing about why a token was rejected. No database access happens on
// this path.
func RequireToken(svc *Service, log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(AuthorizationHeader)
			if header == "" {
				WriteError(w, r, apperror.NewMissingAuthHeader())
				return
			}

			parts := strings.Split(header, " ")
			if len(parts) != 2 {
				WriteError(w, r, apperror.NewInvalidHeader(AuthorizationHeader,
					"expected '<scheme> <token>'", nil))
				return
			}

			claims, err := svc.ValidateToken(parts[1])
			if err != nil {
				log.Warn("token validation failed",
					"path", r.URL.Path, "error", err)
				WriteError(w, r, apperror.NewInvalidCredentials())
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithClaims(r.Context(), claims)))
		})
	}
}
