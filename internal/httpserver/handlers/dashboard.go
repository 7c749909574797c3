package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/render"
)

// viewParams reads ?q= and ?filter=. An unknown filter falls back to all
// and is reported as a notice.
func viewParams(r *http.Request) (domain.Query, domain.Filter, string) {
	q := domain.ParseQuery(r.URL.Query().Get("q"))
	f, err := domain.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		return q, domain.AllFilter, "Error: " + err.Error()
	}
	return q, f, ""
}

// Index reloads the list and renders the filtered table
func Index(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, err := visitorContext(r, d)
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}
		all, loadedAt, err := records(ctx, d)
		if errors.Is(err, gateway.ErrAuthExpired) {
			fail(w, r, d, err, "/")
			return
		}

		q, f, badFilter := viewParams(r)
		v := d.Dashboard.ViewRecords(all, err, loadedAt, q, f)

		l := layout(w, r, d)
		if badFilter != "" {
			l.Notice = badFilter
		}
		page := render.DashboardPage{
			Layout:   l,
			Query:    v.Query,
			Filter:   v.Filter,
			Chips:    render.Chips(v.Query, f, v.Tags),
			Table:    v.Table,
			ReadOnly: v.ReadOnly,
		}
		if !v.LastReload.IsZero() {
			page.LastReload = v.LastReload.Format(time.DateTime)
		}
		renderPage(w, d, render.PageDashboard, http.StatusOK, page)
	}
}

type authError struct {
	Error string `json:"error"`
	Login string `json:"login"`
}

// ViewJSON is Index as JSON. An expired session is a 401 carrying the
// login location.
func ViewJSON(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		unauthorized := func(err error) {
			clearSession(w, r)
			writeJSON(w, d, http.StatusUnauthorized, authError{Error: err.Error(), Login: dashboard.LoginPath})
		}

		ctx, err := visitorContext(r, d)
		if err != nil {
			unauthorized(err)
			return
		}
		all, loadedAt, err := records(ctx, d)
		if errors.Is(err, gateway.ErrAuthExpired) {
			unauthorized(err)
			return
		}

		q, f, badFilter := viewParams(r)
		if badFilter != "" {
			writeJSON(w, d, http.StatusBadRequest, map[string]string{"error": badFilter})
			return
		}
		writeJSON(w, d, http.StatusOK, d.Dashboard.ViewRecords(all, err, loadedAt, q, f))
	}
}

// Detail renders the drawer of one domain: from the visitor's own list on
// a source with a login, from the store otherwise.
func Detail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "domain")
		ctx, err := visitorContext(r, d)
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}

		var detail render.Detail
		if _, visitor := gateway.SessionFrom(ctx); visitor {
			all, ferr := d.Dashboard.Fetch(ctx)
			if ferr != nil {
				fail(w, r, d, ferr, "/")
				return
			}
			detail, err = d.Dashboard.DetailIn(all, d.Now(), name)
		} else {
			detail, err = d.Dashboard.Detail(name)
		}
		if err != nil {
			setMessage(w, noticeCookie, "Error: "+err.Error())
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		renderPage(w, d, render.PageDetail, http.StatusOK, render.DetailPage{
			Layout: layout(w, r, d),
			Detail: detail,
		})
	}
}
