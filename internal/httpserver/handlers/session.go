package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/httpserver/mw"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/utils"
)

// sessionCookie holds the visitor's backend cookie ("name=value", query
// escaped). The backend session never lives on the server.
const sessionCookie = "domon_session"

// visitorContext attaches the visitor's backend session to the request
// context. Sources without a login pass through; on the others a missing
// cookie is an expired session and nothing reaches the backend.
func visitorContext(r *http.Request, d deps.Deps) (context.Context, error) {
	if !d.Dashboard.RequiresLogin() {
		return r.Context(), nil
	}
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, gateway.ErrAuthExpired
	}
	cookie, err := url.QueryUnescape(c.Value)
	if err != nil || cookie == "" {
		return nil, gateway.ErrAuthExpired
	}
	return gateway.WithSession(r.Context(), gateway.NewSession(cookie)), nil
}

func setSession(w http.ResponseWriter, r *http.Request, cookie string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    url.QueryEscape(cookie),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSession(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(sessionCookie); err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

// records loads what this request shows: the visitor's own list when ctx
// carries a session, the shared store otherwise.
func records(ctx context.Context, d deps.Deps) ([]domain.Record, time.Time, error) {
	if _, visitor := gateway.SessionFrom(ctx); visitor {
		all, err := d.Dashboard.Fetch(ctx)
		return all, d.Now(), err
	}
	_, err := d.Dashboard.Load(ctx)
	store := d.Dashboard.Store()
	return store.All(), store.LastReload(), err
}

// verified answers 403 unless the parsed form carries the visitor's CSRF
// token.
func verified(w http.ResponseWriter, r *http.Request, d deps.Deps) bool {
	if mw.ValidCSRF(r) {
		return true
	}
	d.Logger.Warn("csrf token missing or wrong",
		logger.String("path", r.URL.Path),
		logger.String("ip", utils.ClientIP(r, d.TrustProxy)))
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	return false
}
