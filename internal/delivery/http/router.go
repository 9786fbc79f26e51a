package http

import (
	"net/http"

	"clinic-queue/internal/delivery/http/handler"
	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/delivery/ws"

	"github.com/gorilla/mux"
)

type Router struct {
	router         *mux.Router
	authHandler    *handler.AuthHandler
	doctorHandler  *handler.DoctorHandler
	bookingHandler *handler.BookingHandler
	queueHandler   *handler.QueueHandler
	auditHandler   *handler.AuditHandler
	wsHandler      *ws.Handler
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	bookingHandler *handler.BookingHandler,
	queueHandler *handler.QueueHandler,
	auditHandler *handler.AuditHandler,
	wsHandler *ws.Handler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		authHandler:    authHandler,
		doctorHandler:  doctorHandler,
		bookingHandler: bookingHandler,
		queueHandler:   queueHandler,
		auditHandler:   auditHandler,
		wsHandler:      wsHandler,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)

	// Public directory and live queue state (waiting room displays)
	api.HandleFunc("/doctors", r.doctorHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/queue/{doctorId}", r.queueHandler.Snapshot).Methods(http.MethodGet)

	// Patient routes
	patient := api.PathPrefix("/bookings").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	patient.HandleFunc("/me/today", r.bookingHandler.MyToday).Methods(http.MethodGet)

	// Staff routes (doctor or admin)
	staff := api.NewRoute().Subrouter()
	staff.Use(r.authMiddleware.Authenticate)
	staff.Use(middleware.RequireAdminOrDoctor)
	staff.HandleFunc("/checkin", r.bookingHandler.CheckIn).Methods(http.MethodPost)
	staff.HandleFunc("/queue/{doctorId}/advance", r.queueHandler.Advance).Methods(http.MethodPost)
	staff.HandleFunc("/doctors/{doctorId}/appointments/today", r.doctorHandler.TodayAppointments).Methods(http.MethodGet)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors/{id}/status", r.doctorHandler.UpdateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/audit-logs", r.auditHandler.List).Methods(http.MethodGet)

	// Live updates over websocket
	wsRoute := api.NewRoute().Subrouter()
	wsRoute.Use(r.authMiddleware.Authenticate)
	wsRoute.HandleFunc("/ws", r.wsHandler.Serve).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
