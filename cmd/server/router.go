package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/vocab-api/internal/api"
	apiMiddleware "github.com/phrazzld/vocab-api/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger(app.logger))
	r.Use(middleware.Recoverer)

	validationHandler := api.NewValidationHandler(app.validation, app.logger)
	studyHandler := api.NewStudyHandler(app.study, app.logger)
	cacheHandler := api.NewCacheHandler(app.validation, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate", validationHandler.Validate)

		r.Route("/learners/{learnerID}", func(r chi.Router) {
			r.Post("/cards/{cardID}/attempts", studyHandler.RecordAttempt)
			r.Get("/session", studyHandler.SelectSession)
		})

		r.Route("/cache", func(r chi.Router) {
			r.Get("/stats", cacheHandler.Stats)
			r.Post("/purge", cacheHandler.Purge)
			r.Post("/audit", cacheHandler.Audit)
		})
	})

	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	r.Get("/health", api.NewHealthHandler(pinger, app.logger).Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
