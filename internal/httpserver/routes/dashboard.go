package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/handlers"
)

func init() { Register("dashboard", registerDashboard, enforceHost, issueCSRF, limitReads) }

func registerDashboard(r chi.Router, d deps.Deps) {
	r.Get("/", handlers.Index(d))
	r.Get("/api/view", handlers.ViewJSON(d))
	r.Get("/domains/{domain}", handlers.Detail(d))
	r.Get("/domains/{domain}/remove", handlers.ConfirmRemove(d))
	r.Get("/login", handlers.LoginForm(d))
}
