// Package http exposes the URL shortener over HTTP: creating short codes,
// redirecting visitors and reporting visit counts.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter builds the router for the service. metricsHandler is mounted on
// /metrics when it is not nil.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.yml")
	})

	r.Get("/ping", handlePing)

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	h := newURLHandler(urlUseCase, validator.New())

	r.Post("/shorten", h.shortenURL)
	r.Get("/stats/{shortCode}", h.getURLStats)
	r.Get("/{shortCode}", h.redirect)

	return r
}
