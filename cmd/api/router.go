package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
)

type routerDeps struct {
	Lead          *handlers.LeadHandler
	Webhook       *handlers.WebhookHandler
	Admin         *handlers.AdminLeadHandler
	Health        *handlers.HealthHandler
	AuthJWTSecret string
	CORSOrigins   []string
	// TrustProxyHeaders mounts RealIP; otherwise the TCP peer address is used.
	TrustProxyHeaders bool
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if d.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", handlers.HeaderWebhookSignature, handlers.HeaderLeadPlatform},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", d.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/leads", func(r chi.Router) {
		r.Post("/", d.Lead.Create)
		r.Post("/webhook", d.Webhook.Handle)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.AuthJWTSecret))
			r.Get("/", d.Admin.List)
			r.Get("/export", d.Admin.Export)
			r.Get("/{id}", d.Admin.Get)
			r.Patch("/{id}", d.Admin.Update)
			r.Delete("/{id}", d.Admin.Delete)
		})
	})

	return r
}
