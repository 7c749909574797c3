package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
	// Guard builds a middleware once the dependencies are known
	Guard func(d deps.Deps) Middleware
)

type group struct {
	name   string
	reg    Registrar
	guards []Guard
}

var registry []group

// Register adds a named route group. Its guards wrap every route of the
// group, in order.
func Register(name string, reg Registrar, guards ...Guard) {
	registry = append(registry, group{name: name, reg: reg, guards: guards})
}

// RegisterAll is called once per router
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, g := range registry {
		r.Group(func(gr chi.Router) {
			for _, guard := range g.guards {
				gr.Use(guard(d))
			}
			g.reg(gr, d)
		})
		d.Logger.Debug("routes registered", logger.String("group", g.name), logger.Int("guards", len(g.guards)))
	}
}
