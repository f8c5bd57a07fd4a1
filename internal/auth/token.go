// Package auth validates HS256 bearer tokens and carries their claims on the
// request context.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds signer verification parameters.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the caller identity the API authorizes against.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

var (
	// ErrMissingToken is returned when no bearer token was presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps every parse and validation failure.
	ErrInvalidToken = errors.New("invalid bearer token")
)

// tokenClaims is the wire form of a workouts token.
type tokenClaims struct {
	jwt.RegisteredClaims
	Scopes scopeList `json:"scopes,omitempty"`
}

// scopeList decodes either a JSON array or an OAuth-style space separated string.
type scopeList []string

func (s *scopeList) UnmarshalJSON(data []byte) error {
	var joined string
	if err := json.Unmarshal(data, &joined); err == nil {
		*s = strings.Fields(joined)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("scopes: %w", err)
	}
	*s = items
	return nil
}

func (s scopeList) set() map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for _, scope := range s {
		if scope = strings.TrimSpace(scope); scope != "" {
			out[scope] = struct{}{}
		}
	}
	return out
}

// Parse validates an HS256 token issued by cfg.Issuer and returns its claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var wire tokenClaims
	_, err := jwt.ParseWithClaims(token, &wire, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if wire.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}

	return &Claims{
		Subject:   wire.Subject,
		Scopes:    wire.Scopes.set(),
		ExpiresAt: wire.ExpiresAt.Time,
	}, nil
}

// Issue signs a token for subject, valid from now for ttl.
func Issue(cfg Config, subject string, scopes []string, ttl time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Scopes: scopes,
	})
	return token.SignedString([]byte(cfg.Secret))
}

// HasScope reports whether the claim set includes the provided scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

// CanRead reports whether the claims allow read access. Write implies read.
func (c *Claims) CanRead() bool {
	return c.HasScope(ScopeWorkoutsRead) || c.HasScope(ScopeWorkoutsWrite)
}
