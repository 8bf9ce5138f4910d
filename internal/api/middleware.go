package api

import (
	"context"
	"net/http"

	"github.com/leca/mediastudio/internal/auth"
)

type contextKey string

const sessionKey contextKey = "session"

// RequireSession rejects requests without a valid session cookie and stores
// the verified claims in the request context.
func RequireSession(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.FromRequest(r)
			if err != nil {
				Unauthorized(w)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession stores the claims when a valid session cookie is present
// and passes the request through either way. Read handlers use this to
// degrade to an empty result instead of failing.
func OptionalSession(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, err := sessions.FromRequest(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), sessionKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Session retrieves the claims stored by the session middleware, or nil.
func Session(ctx context.Context) *auth.SessionClaims {
	claims, _ := ctx.Value(sessionKey).(*auth.SessionClaims)
	return claims
}
