package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsNextHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestCORSWildcardAllowsAnyOrigin(t *testing.T) {
	m := NewCORSMiddleware([]string{"*"})
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	req.Header.Set("Origin", "https://anything.example")
	rec := httptest.NewRecorder()
	m.Handle(corsNextHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, called)
}

func TestCORSEchoesListedOrigin(t *testing.T) {
	m := NewCORSMiddleware([]string{"https://clinic.example", "https://admin.clinic.example"})
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	req.Header.Set("Origin", "https://admin.clinic.example")
	rec := httptest.NewRecorder()
	m.Handle(corsNextHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, "https://admin.clinic.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
	assert.True(t, called)
}

func TestCORSSkipsUnlistedOrigin(t *testing.T) {
	m := NewCORSMiddleware([]string{"https://clinic.example"})
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	m.Handle(corsNextHandler(&called)).ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, called, "the request itself still reaches the handler")
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	m := NewCORSMiddleware([]string{"*"})
	var called bool

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/bookings", nil)
	req.Header.Set("Origin", "https://clinic.example")
	rec := httptest.NewRecorder()
	m.Handle(corsNextHandler(&called)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called, "preflight must not reach the handler")
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
