package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/mailtrace/internal/metrics"
)

// Routes configures the tracking HTTP surface. Pixel and click endpoints
// are fetched by arbitrary mail clients, so CORS is wide open; there is
// deliberately no auth on any route.
func Routes(h *Handlers, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/pixel/{trackingID}", h.HandlePixel)
	r.Get("/click/{trackingID}", h.HandleClick)
	r.Post("/report-forward", h.HandleReportForward)
	r.Get("/report-forward/{trackingID}", h.HandleForwardForm)
	r.Get("/tracking/{trackingID}", h.HandleGetTracking)
	r.Get("/tracking-logs", h.HandleTrackingLogs)
	r.Post("/send", h.HandleSend)
	r.Get("/health", h.HandleHealth)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	return r
}
