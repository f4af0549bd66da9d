package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/handler"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/metrics"
	"github.com/AchilleasB/kinder/nursery-service/internal/adapters/middleware"
	"github.com/AchilleasB/kinder/nursery-service/internal/core/domain"
)

// Options carries everything the router mounts.
type Options struct {
	Log            zerolog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Auth           *middleware.AuthMiddleware
	AllowedOrigins []string
	RatePerMinute  int

	Health       *handler.HealthHandler
	Session      *handler.AuthHandler
	Registration *handler.RegistrationHandler
	Educator     *handler.EducatorHandler
	Parent       *handler.ParentHandler
	Admin        *handler.AdminHandler
}

func New(o Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(o.Log, o.Metrics))
	r.Use(middleware.Recoverer(o.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	if o.RatePerMinute > 0 {
		r.Use(httprate.LimitByIP(o.RatePerMinute, time.Minute))
	}

	// Health endpoints (OpenShift compatible)
	r.Get("/health", o.Health.Health)
	r.Get("/health/ready", o.Health.Ready)
	r.Get("/health/live", o.Health.Live)
	if o.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(o.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/programs", handler.Programs)
	r.Post("/login", o.Session.Login)
	r.Post("/register", o.Registration.Register)

	r.With(o.requireRole(domain.RoleAdmin, domain.RoleEducator, domain.RoleParent)).
		Post("/logout", o.Session.Logout)

	r.Route("/educator", func(r chi.Router) {
		r.Use(o.requireRole(domain.RoleEducator))
		r.Get("/roster", o.Educator.Roster)
		r.Post("/attendance", o.Educator.SubmitAttendance)
		r.Post("/attendance/report", o.Educator.Report)
		r.Post("/notices", o.Educator.SendNotice)
	})

	r.Route("/parent", func(r chi.Router) {
		r.Use(o.requireRole(domain.RoleParent))
		r.Get("/me", o.Parent.Profile)
		r.Get("/subscription", o.Parent.Subscription)
		r.Post("/subscription", o.Parent.Pay)
		r.Get("/notices", o.Parent.Notices)
		r.Get("/notices/stream", o.Parent.StreamNotices)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(o.requireRole(domain.RoleAdmin))
		r.Get("/overview", o.Admin.Overview)
		r.Get("/revenue", o.Admin.Revenue)
		r.Get("/registrations", o.Admin.Enrollments)
		r.Get("/educators", o.Admin.Educators)
		r.Post("/educators", o.Admin.CreateEducator)
		r.Get("/attendance", o.Admin.Attendance)
		r.Delete("/{collection}/{id}", o.Admin.Delete)
	})

	return r
}

func (o Options) requireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return o.Auth.RequireRole(roles, next)
	}
}
