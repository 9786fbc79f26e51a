package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-queue/internal/delivery/http/handler"
	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/delivery/ws"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func newTestRouter() *mux.Router {
	r := NewRouter(
		handler.NewAuthHandler(nil, nil),
		handler.NewDoctorHandler(nil, nil, nil),
		handler.NewBookingHandler(nil, nil),
		handler.NewQueueHandler(nil),
		handler.NewAuditHandler(nil),
		ws.NewHandler(nil, nil),
		middleware.NewAuthMiddleware(nil, nil),
		middleware.NewCORSMiddleware([]string{"*"}),
	)
	return r.Setup()
}

func TestRouterExposesDocumentedPaths(t *testing.T) {
	router := newTestRouter()
	id := "11111111-1111-1111-1111-111111111111"

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/health"},
		{http.MethodPost, "/api/v1/auth/register/patient"},
		{http.MethodPost, "/api/v1/auth/register/doctor"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodPost, "/api/v1/auth/refresh-token"},
		{http.MethodPost, "/api/v1/auth/logout"},
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/doctors"},
		{http.MethodGet, "/api/v1/queue/" + id},
		{http.MethodPost, "/api/v1/bookings"},
		{http.MethodGet, "/api/v1/bookings/me/today"},
		{http.MethodPost, "/api/v1/checkin"},
		{http.MethodPost, "/api/v1/queue/" + id + "/advance"},
		{http.MethodGet, "/api/v1/doctors/" + id + "/appointments/today"},
		{http.MethodPut, "/api/v1/admin/doctors/" + id + "/status"},
		{http.MethodGet, "/api/v1/admin/audit-logs"},
		{http.MethodGet, "/api/v1/ws"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		var match mux.RouteMatch
		assert.True(t, router.Match(req, &match), "%s %s must be routed", tt.method, tt.path)
	}
}

func TestRouterHasNoStrayAuthAliases(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/api/v1/auth/register", "/api/v1/auth/refresh"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		var match mux.RouteMatch
		assert.False(t, router.Match(req, &match), "%s must not be routed", path)
	}
}
