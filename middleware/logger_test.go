package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-storefront/middleware"
	"go-storefront/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain wires the middleware in the same order main.go does: request id
// and logging at the router level, auth on the subrouters.
func chain(logger *zerolog.Logger, handler http.Handler) http.Handler {
	return middleware.RequestIDMiddleware(
		middleware.LoggerMiddleware(logger)(
			middleware.AuthMiddleware(handler)))
}

func TestLoggerRecordsAuthenticatedEmail(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var sawClaims bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawClaims = middleware.ClaimsFromRequest(r)
		w.WriteHeader(http.StatusOK)
	})

	token, err := utils.GenerateJWT("jane@example.com", "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	chain(&logger, handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawClaims, "handler should see the verified claims")
	assert.Contains(t, buf.String(), `"email":"jane@example.com"`)
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestLoggerRecordsAnonymousWithoutToken(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Public routes skip AuthMiddleware entirely.
	public := middleware.RequestIDMiddleware(
		middleware.LoggerMiddleware(&logger)(handler))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()

	public.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"email":"anonymous"`)
}

func TestLoggerRecordsAnonymousOnRejectedToken(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	chain(&logger, handler).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, buf.String(), `"email":"anonymous"`)
	assert.Contains(t, buf.String(), `"status":401`)
}
