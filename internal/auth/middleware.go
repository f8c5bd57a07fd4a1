package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext returns the claims attached by the middleware, if any.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// Middleware authenticates requests with a bearer token.
type Middleware struct {
	Config Config
	// Public lists paths served without a token.
	Public map[string]bool
	// Disabled injects LocalClaims instead of validating a token.
	Disabled bool
}

// NewMiddleware returns a Middleware that leaves /healthz public.
func NewMiddleware(cfg Config) Middleware {
	return Middleware{Config: cfg, Public: map[string]bool{"/healthz": true}}
}

// LocalClaims grants both scopes to the "local" subject.
func LocalClaims() *Claims {
	return &Claims{
		Subject:   "local",
		Scopes:    scopeList{ScopeWorkoutsRead, ScopeWorkoutsWrite}.set(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
}

// Wrap authenticates every request before handing it to next.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Public[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		claims := LocalClaims()
		if !m.Disabled {
			var err error
			if claims, err = Parse(bearerToken(r), m.Config); err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="workouts"`)
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// bearerToken returns the token from the Authorization header. A header
// using any other scheme yields a non-empty string that fails to parse.
func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return header
	}
	if !strings.EqualFold(scheme, "bearer") {
		return header
	}
	return token
}
