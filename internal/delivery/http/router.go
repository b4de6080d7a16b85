package http

import (
	"net/http"
	"time"

	"go-appointment-saas/internal/delivery/http/handler"
	"go-appointment-saas/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups every resource handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Tenant       *handler.TenantHandler
	Service      *handler.ServiceHandler
	Appointment  *handler.AppointmentHandler
	Recurring    *handler.RecurringHandler
	Waitlist     *handler.WaitlistHandler
	Notification *handler.NotificationHandler
	Contact      *handler.ContactHandler
	AuditLog     *handler.AuditLogHandler
	Health       *handler.HealthHandler
}

type Router struct {
	router         *mux.Router
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
	corsMiddleware *middleware.CORSMiddleware
	rateLimit      *middleware.RateLimitMiddleware
	log            *logrus.Logger
	options        Options
}

// Options are the transport limits applied to every request.
type Options struct {
	ServiceName  string
	MaxBodyBytes int64
	Timeout      time.Duration
}

func NewRouter(
	handlers Handlers,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	log *logrus.Logger,
	options Options,
) *Router {
	return &Router{
		router:         mux.NewRouter(),
		handlers:       handlers,
		authMiddleware: authMiddleware,
		corsMiddleware: corsMiddleware,
		rateLimit:      rateLimit,
		log:            log,
		options:        options,
	}
}

func (r *Router) Setup() http.Handler {
	h := r.handlers

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health checks
	api.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	api.HandleFunc("/ready", h.Health.Ready).Methods(http.MethodGet)

	// Organization routes (public)
	api.Handle("/tenants/register", r.limited("register", h.Tenant.Register)).Methods(http.MethodPost)
	api.HandleFunc("/tenants/public/{slug}", h.Tenant.GetPublicProfile).Methods(http.MethodGet)

	// Organization routes (admin)
	api.Handle("/tenants/me", r.admin(h.Tenant.GetCurrent)).Methods(http.MethodGet)
	api.Handle("/tenants/me", r.admin(h.Tenant.UpdateCurrent)).Methods(http.MethodPut)
	api.Handle("/tenants/me/members", r.admin(h.Tenant.ListMembers)).Methods(http.MethodGet)
	api.Handle("/tenants/me/members", r.admin(h.Tenant.CreateMember)).Methods(http.MethodPost)
	api.Handle("/tenants/me/members/{id}/status", r.admin(h.Tenant.UpdateMemberStatus)).Methods(http.MethodPatch)

	// Public booking
	api.Handle("/public/{slug}/availability", r.limited("availability", h.Appointment.Availability)).Methods(http.MethodGet)
	api.Handle("/public/{slug}/appointments", r.limited("guest-booking", h.Appointment.GuestBook)).Methods(http.MethodPost)
	api.Handle("/contact", r.limited("contact", h.Contact.Submit)).Methods(http.MethodPost)

	// Auth routes (public)
	api.Handle("/auth/register", r.limited("register", h.Auth.Register)).Methods(http.MethodPost)
	api.Handle("/auth/login", r.limited("login", h.Auth.Login)).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", h.Auth.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	api.Handle("/auth/logout", r.protected(h.Auth.Logout)).Methods(http.MethodPost)
	api.Handle("/auth/me", r.protected(h.Auth.GetCurrentUser)).Methods(http.MethodGet)

	// Services and working hours
	api.Handle("/services", r.protected(h.Service.GetAllServices)).Methods(http.MethodGet)
	api.Handle("/services", r.admin(h.Service.CreateService)).Methods(http.MethodPost)
	api.Handle("/services/{id}", r.protected(h.Service.GetService)).Methods(http.MethodGet)
	api.Handle("/services/{id}", r.admin(h.Service.UpdateService)).Methods(http.MethodPut)
	api.Handle("/services/{id}", r.admin(h.Service.DeleteService)).Methods(http.MethodDelete)
	api.Handle("/providers/{id}/working-hours", r.protected(h.Service.GetWorkingHours)).Methods(http.MethodGet)
	api.Handle("/providers/{id}/working-hours", r.staff(h.Service.ReplaceWorkingHours)).Methods(http.MethodPut)

	// Appointments
	api.Handle("/appointments", r.protected(h.Appointment.CreateAppointment)).Methods(http.MethodPost)
	api.Handle("/appointments", r.protected(h.Appointment.GetAllAppointments)).Methods(http.MethodGet)
	api.Handle("/appointments/{id}", r.protected(h.Appointment.GetAppointment)).Methods(http.MethodGet)
	api.Handle("/appointments/{id}", r.protected(h.Appointment.UpdateAppointment)).Methods(http.MethodPut)
	api.Handle("/appointments/{id}/status", r.protected(h.Appointment.UpdateStatus)).Methods(http.MethodPatch)
	api.Handle("/appointments/{id}/payments", r.protected(h.Appointment.Pay)).Methods(http.MethodPost)

	// Recurring appointments
	api.Handle("/recurring-appointments", r.protected(h.Recurring.CreateRecurring)).Methods(http.MethodPost)
	api.Handle("/recurring-appointments", r.protected(h.Recurring.GetAllRecurring)).Methods(http.MethodGet)
	api.Handle("/recurring-appointments/{id}", r.protected(h.Recurring.GetRecurring)).Methods(http.MethodGet)
	api.Handle("/recurring-appointments/{id}/generate", r.protected(h.Recurring.Generate)).Methods(http.MethodPost)
	api.Handle("/recurring-appointments/{id}", r.protected(h.Recurring.Deactivate)).Methods(http.MethodDelete)

	// Waitlist
	api.Handle("/waitlist", r.protected(h.Waitlist.Join)).Methods(http.MethodPost)
	api.Handle("/waitlist", r.protected(h.Waitlist.GetAllEntries)).Methods(http.MethodGet)
	api.Handle("/waitlist/match", r.staff(h.Waitlist.Match)).Methods(http.MethodPost)
	api.Handle("/waitlist/{id}", r.protected(h.Waitlist.Cancel)).Methods(http.MethodDelete)
	api.Handle("/waitlist/{id}/book", r.protected(h.Waitlist.Book)).Methods(http.MethodPost)

	// Notifications
	api.Handle("/notifications", r.protected(h.Notification.GetAllNotifications)).Methods(http.MethodGet)
	api.Handle("/notifications/read-all", r.protected(h.Notification.MarkAllRead)).Methods(http.MethodPost)
	api.Handle("/notifications/{id}/read", r.protected(h.Notification.MarkRead)).Methods(http.MethodPatch)

	// Audit logs (admin)
	api.Handle("/audit-logs", r.admin(h.AuditLog.GetAllAuditLogs)).Methods(http.MethodGet)
	api.Handle("/audit-logs/{id}", r.admin(h.AuditLog.GetAuditLog)).Methods(http.MethodGet)

	// the last wrapper runs first, so every access log line carries a request id
	var root http.Handler = r.router
	root = middleware.Timeout(r.options.Timeout)(root)
	root = middleware.BodyLimit(r.options.MaxBodyBytes)(root)
	root = r.corsMiddleware.Handle(root)
	root = middleware.Recover(r.log)(root)
	root = middleware.AccessLog(r.log)(root)
	root = middleware.RequestID(root)
	return otelhttp.NewHandler(root, r.options.ServiceName)
}

func (r *Router) protected(fn http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(fn)
}

func (r *Router) admin(fn http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(middleware.RequireAdmin(fn))
}

func (r *Router) staff(fn http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(middleware.RequireStaff(fn))
}

func (r *Router) limited(scope string, fn http.HandlerFunc) http.Handler {
	return r.rateLimit.Limit(scope)(fn)
}
