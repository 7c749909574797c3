package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/handlers"
)

func init() { Register("mutations", registerMutations, enforceHost, issueCSRF, limitMutations) }

func registerMutations(r chi.Router, d deps.Deps) {
	r.Post("/domains", handlers.Add(d))
	r.Post("/domains/bulk", handlers.Bulk(d))
	r.Post("/domains/{domain}/remove", handlers.Remove(d))
	r.Post("/domains/{domain}/refresh", handlers.Refresh(d))
	r.Post("/login", handlers.Login(d))
	r.Post("/logout", handlers.Logout(d))
}
