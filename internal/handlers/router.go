package handlers

import (
	"net/http"
	"time"

	"taskList/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	RateLimit      int
	AllowedOrigins []string
}

func NewRouter(h TaskHandler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if cfg.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimit))
	}

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.GetTasks)        // GET /tasks
		r.Post("/", h.PostTask)       // POST /tasks
		r.Put("/filter", h.PutFilter) // PUT /tasks/filter

		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.DeleteTask)     // DELETE /tasks/{id}
			r.Post("/toggle", h.ToggleTask) // POST /tasks/{id}/toggle
		})
	})

	r.Get("/health", h.HealthCheck)

	return otelhttp.NewHandler(r, "task-list")
}
