// Package server exposes the engine over HTTP for editor integrations and
// the type-checker plugin: schema lookups and on-demand checks against the
// project registry.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/maraichr/framelint/internal/engine"
)

func NewRouter(logger *slog.Logger, linter *engine.Linter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		schemas := NewSchemaHandler(logger, linter)
		r.Route("/schemas", func(r chi.Router) {
			r.Get("/", schemas.List)
			r.Get("/{name}", schemas.Get)
			r.Get("/{name}/export", schemas.Export)
		})

		check := NewCheckHandler(logger, linter)
		r.Post("/check", check.Check)
	})

	return r
}
