package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/mw"
	"github.com/MrSnakeDoc/domon/internal/render"
)

// LoginForm shows the sign-in page. Sources without a login go straight
// to the dashboard.
func LoginForm(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.Dashboard.RequiresLogin() {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		l := layout(w, r, d)
		l.Anonymous = true
		renderPage(w, d, render.PageLogin, http.StatusOK, render.LoginPage{Layout: l})
	}
}

// Login forwards the credentials. A rejection re-renders the form with
// the backend message and keeps the username. The backend cookie goes
// back to this visitor only, in the dashboard's own session cookie.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !verified(w, r, d) {
			return
		}
		username := r.PostFormValue("username")
		rejected := func(status int, notice string) {
			renderPage(w, d, render.PageLogin, status, render.LoginPage{
				Layout:   render.Layout{Notice: notice, Anonymous: true, CSRF: mw.CSRFToken(r.Context())},
				Username: username,
			})
		}

		sess := gateway.NewSession("")
		msg, err := d.Dashboard.Login(gateway.WithSession(r.Context(), sess), username, r.PostFormValue("password"))
		if err != nil {
			status := http.StatusUnauthorized
			var nerr *gateway.NetworkError
			if errors.As(err, &nerr) {
				status = http.StatusBadGateway
			}
			rejected(status, gateway.Notice(err))
			return
		}
		if d.Dashboard.RequiresLogin() {
			if sess.Cookie() == "" {
				d.Logger.Warn("backend accepted the login without a session cookie")
				rejected(http.StatusBadGateway, "Error: the backend did not start a session.")
				return
			}
			setSession(w, r, sess.Cookie())
		}
		succeed(w, r, "/", msg)
	}
}

// Logout ends this visitor's session only and always lands on the login
// page. Without a session cookie nothing reaches the backend.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !verified(w, r, d) {
			return
		}
		to := dashboard.LoginPath
		if ctx, err := visitorContext(r, d); err == nil {
			to = d.Dashboard.Logout(ctx)
		}
		clearSession(w, r)
		http.Redirect(w, r, to, http.StatusSeeOther)
	}
}
