package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "workouts.test"}

func TestParseIssuedToken(t *testing.T) {
	token, err := Issue(testConfig, "runner-1", []string{ScopeWorkoutsRead}, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Equal(t, "runner-1", claims.Subject)
	require.True(t, claims.HasScope(ScopeWorkoutsRead))
	require.False(t, claims.HasScope(ScopeWorkoutsWrite))
	require.True(t, claims.CanRead())
}

func TestParseRejectsBadTokens(t *testing.T) {
	expired, err := Issue(testConfig, "runner-1", nil, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	wrongIssuer, err := Issue(Config{Secret: testConfig.Secret, Issuer: "someone-else"}, "runner-1", nil, time.Hour, time.Now())
	require.NoError(t, err)

	wrongSecret, err := Issue(Config{Secret: "other", Issuer: testConfig.Issuer}, "runner-1", nil, time.Hour, time.Now())
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong issuer": wrongIssuer,
		"wrong secret": wrongSecret,
		"no subject":   noSubject,
		"garbage":      "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, testConfig)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err = Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestParseAcceptsSpaceSeparatedScopes(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "runner-3",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": "workouts:read  workouts:write",
	}).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	claims, err := Parse(token, testConfig)
	require.NoError(t, err)
	require.Len(t, claims.Scopes, 2)
	require.True(t, claims.HasScope(ScopeWorkoutsWrite))
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "runner-1",
		"iss": testConfig.Issuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)

	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := NewMiddleware(testConfig).Wrap(next)

	t.Run("health check skips auth", func(t *testing.T) {
		seen = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.Nil(t, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/activities", nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Contains(t, rr.Body.String(), ErrMissingToken.Error())
		require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
		req.Header.Set("Authorization", "Basic abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := Issue(testConfig, "runner-2", []string{ScopeWorkoutsWrite}, time.Hour, time.Now())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/v1/activities", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.NotNil(t, seen)
		require.Equal(t, "runner-2", seen.Subject)
		require.True(t, seen.CanRead())
	})

	t.Run("disabled injects local claims", func(t *testing.T) {
		mw := NewMiddleware(testConfig)
		mw.Disabled = true
		rr := httptest.NewRecorder()
		mw.Wrap(next).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/activities", nil))
		require.Equal(t, http.StatusNoContent, rr.Code)
		require.True(t, seen.HasScope(ScopeWorkoutsWrite))
	})
}
