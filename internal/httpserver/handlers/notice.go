package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/mw"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/render"
)

// One-shot messages survive a single redirect in short-lived cookies.
const (
	noticeCookie = "domon_notice"
	flashCookie  = "domon_flash"
	flashMaxAge  = 60
)

func setMessage(w http.ResponseWriter, name, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeMessage(w http.ResponseWriter, r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}

// layout consumes the pending messages of this request
func layout(w http.ResponseWriter, r *http.Request, d deps.Deps) render.Layout {
	return render.Layout{
		Notice:    takeMessage(w, r, noticeCookie),
		Flash:     takeMessage(w, r, flashCookie),
		Anonymous: !d.Dashboard.RequiresLogin(),
		CSRF:      mw.CSRFToken(r.Context()),
	}
}

// succeed redirects to "to" with a success message
func succeed(w http.ResponseWriter, r *http.Request, to, msg string) {
	if msg != "" {
		setMessage(w, flashCookie, msg)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// fail maps an error to what the user sees. An expired session always
// goes to the login page, drops the visitor's session cookie and renders
// nothing else; every other error becomes a notice on "back".
func fail(w http.ResponseWriter, r *http.Request, d deps.Deps, err error, back string) {
	if errors.Is(err, gateway.ErrAuthExpired) {
		d.Logger.Info("session expired, redirecting to login", logger.String("path", r.URL.Path))
		clearSession(w, r)
		http.Redirect(w, r, dashboard.LoginPath, redirectStatus(r))
		return
	}
	setMessage(w, noticeCookie, gateway.Notice(err))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func redirectStatus(r *http.Request) int {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// renderPage buffers the page so a template failure still yields a clean 500
func renderPage(w http.ResponseWriter, d deps.Deps, page string, status int, data any) {
	var buf bytes.Buffer
	if err := d.Pages.Render(&buf, page, data); err != nil {
		d.Logger.Error("failed to render page", logger.String("page", page), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, d deps.Deps, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}

func writeText(w http.ResponseWriter, d deps.Deps, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(msg)); err != nil {
		d.Logger.Debug("failed to write response", logger.Error(err))
	}
}
