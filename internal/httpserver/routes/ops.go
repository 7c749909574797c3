package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/handlers"
)

func init() { Register("ops", registerOps, allowCIDRs) }

func registerOps(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
	r.Post("/reload", handlers.Reload(d))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
}
