package middleware

import (
	"encoding/json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-places/utils/errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTMiddlewarePutsSessionOnContext(t *testing.T) {
	var got string
	h := JWTMiddleware("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "secret", jwt.MapClaims{
		"sessionID": "abc",
		"exp":       time.Now().Add(time.Hour).Unix(),
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", got)
}

func TestJWTMiddlewareRejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic Zm9vOmJhcg==",
		"wrong secret":   "Bearer " + signed(t, "other", jwt.MapClaims{"sessionID": "abc"}),
		"expired":        "Bearer " + signed(t, "secret", jwt.MapClaims{"sessionID": "abc", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no session":     "Bearer " + signed(t, "secret", jwt.MapClaims{"userID": "abc"}),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			called := false
			h := JWTMiddleware("secret")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
			req := httptest.NewRequest(http.MethodGet, "/session", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			var body errors.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "UNAUTHORIZED", body.Code)
		})
	}
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	h := ErrorMiddleware()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errors.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
