package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/jobcard-backend/internal/api/handlers"
	"github.com/baharkarakas/jobcard-backend/internal/api/httpx"
	"github.com/baharkarakas/jobcard-backend/internal/auth"
	"github.com/baharkarakas/jobcard-backend/internal/config"
	"github.com/baharkarakas/jobcard-backend/internal/metrics"
	"github.com/baharkarakas/jobcard-backend/internal/middleware"
	"github.com/baharkarakas/jobcard-backend/internal/models"
	"github.com/baharkarakas/jobcard-backend/internal/services"
)

type RouterDeps struct {
	Cfg config.Config
	Log *slog.Logger
	TM  *auth.TokenManager

	AuthSvc         *services.AuthService
	CompanySvc      *services.CompanyService
	UserSvc         *services.UserService
	ProviderSvc     *services.ProviderService
	JobCardSvc      *services.JobCardService
	NotificationSvc *services.NotificationService
	DashboardSvc    *services.DashboardService

	// Ping backs /health; nil means always healthy.
	Ping func(context.Context) error
}

const (
	roleAdmin    = string(models.RoleAdmin)
	roleCompany  = string(models.RoleCompany)
	roleProvider = string(models.RoleProvider)
)

func NewRouter(d RouterDeps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	origins := d.Cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	authH := handlers.NewAuthHandler(d.AuthSvc)
	companyH := handlers.NewCompanyHandler(d.CompanySvc)
	userH := handlers.NewUserHandler(d.UserSvc)
	providerH := handlers.NewProviderHandler(d.ProviderSvc)
	jobH := handlers.NewJobCardHandler(d.JobCardSvc, d.Cfg.MaxUploadBytes)
	noteH := handlers.NewNotificationHandler(d.NotificationSvc)
	dashH := handlers.NewDashboardHandler(d.DashboardSvc)
	authMW := middleware.NewAuthMiddleware(d.TM)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RequestLogger(log))
	r.Use(middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable", nil)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// ---------- auth (public) ----------
		r.Post("/auth/register-company", authH.RegisterCompany)
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Auth)

			r.Get("/auth/me", authH.Me)
			r.Post("/auth/change-password", authH.ChangePassword)

			// ---------- notifications ----------
			r.Get("/notifications", noteH.List)
			r.Get("/notifications/unread-count", noteH.UnreadCount)
			r.Post("/notifications/read", noteH.MarkAllRead)

			// ---------- photos (any role that can see the card) ----------
			r.Get("/job-cards/{id}/photos", jobH.ListPhotos)
			r.Get("/job-cards/{id}/photos/{photoID}", jobH.DownloadPhoto)

			// ---------- admin ----------
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(roleAdmin))
				r.Get("/stats", dashH.Admin)

				r.Get("/companies", companyH.List)
				r.Get("/companies/{id}", companyH.Get)
				r.Post("/companies/{id}/approve", companyH.Approve())
				r.Post("/companies/{id}/reject", companyH.Reject())
				r.Post("/companies/{id}/suspend", companyH.Suspend())
				r.Post("/companies/{id}/reactivate", companyH.Reactivate())

				r.Get("/users", userH.List)
				r.Post("/users/{id}/activate", userH.SetActive(true))
				r.Post("/users/{id}/deactivate", userH.SetActive(false))

				r.Get("/job-cards", jobH.List)
				r.Get("/job-cards/{id}", jobH.Get)
				r.Post("/job-cards/{id}/cancel", jobH.Cancel)
			})

			// ---------- company ----------
			r.Route("/company", func(r chi.Router) {
				r.Use(middleware.RequireRole(roleCompany))
				r.Get("/stats", dashH.Company)

				r.Get("/providers", providerH.List)
				r.Post("/providers", providerH.Create)
				r.Get("/providers/{id}", providerH.Get)
				r.Put("/providers/{id}", providerH.Update)
				r.Post("/providers/{id}/activate", providerH.SetActive(true))
				r.Post("/providers/{id}/deactivate", providerH.SetActive(false))

				r.Get("/job-cards", jobH.List)
				r.Post("/job-cards", jobH.Create)
				r.Get("/job-cards/{id}", jobH.Get)
				r.Put("/job-cards/{id}", jobH.Update)
				r.Delete("/job-cards/{id}", jobH.Delete)
				r.Post("/job-cards/{id}/assign", jobH.Assign)
				r.Post("/job-cards/{id}/cancel", jobH.Cancel)
			})

			// ---------- provider ----------
			r.Route("/provider", func(r chi.Router) {
				r.Use(middleware.RequireRole(roleProvider))
				r.Get("/job-cards", jobH.List)
				r.Get("/job-cards/{id}", jobH.Get)
				r.Post("/job-cards/{id}/accept", jobH.Accept)
				r.Post("/job-cards/{id}/decline", jobH.Decline)
				r.Post("/job-cards/{id}/start", jobH.Start)
				r.Post("/job-cards/{id}/complete", jobH.Complete)
				r.Post("/job-cards/{id}/photos", jobH.UploadPhoto)
			})
		})
	})

	return r
}
