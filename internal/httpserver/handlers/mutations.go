package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/domon/internal/dashboard"
	"github.com/MrSnakeDoc/domon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/render"
)

const (
	defaultBulkMaxBytes = 10 << 20
	multipartMemory     = 1 << 20
)

// Add forwards the "domain" form field to the backend
func Add(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !verified(w, r, d) {
			return
		}
		ctx, err := visitorContext(r, d)
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}
		msg, err := d.Dashboard.Add(ctx, r.PostFormValue("domain"))
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}
		succeed(w, r, "/", msg)
	}
}

// ConfirmRemove asks before a removal
func ConfirmRemove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "domain")
		if _, err := visitorContext(r, d); err != nil {
			fail(w, r, d, err, "/")
			return
		}
		renderPage(w, d, render.PageConfirm, http.StatusOK, render.ConfirmPage{
			Layout: layout(w, r, d),
			Domain: name,
			Prompt: dashboard.RemovePrompt(name),
		})
	}
}

// Remove requires the CSRF token and confirm=yes; anything else is a
// declined confirmation and nothing reaches the backend.
func Remove(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !verified(w, r, d) {
			return
		}
		ctx, err := visitorContext(r, d)
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}
		name := chi.URLParam(r, "domain")
		confirmed := r.PostFormValue("confirm") == "yes"

		msg, err := d.Dashboard.Remove(ctx, name, dashboard.ConfirmFunc(func(string) bool {
			return confirmed
		}))
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}
		succeed(w, r, "/", msg)
	}
}

// Refresh jitters the uptime of a demo record
func Refresh(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !verified(w, r, d) {
			return
		}
		name := chi.URLParam(r, "domain")
		v, err := d.Dashboard.Refresh(name)
		if err != nil {
			setMessage(w, noticeCookie, "Error: "+err.Error())
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		succeed(w, r, "/", fmt.Sprintf("Uptime of %s refreshed: %s%%", name, render.FormatPct(v)))
	}
}

// Bulk forwards the multipart "file" field. The body is capped at
// BulkMaxBytes and the CSRF token is checked once it is parsed.
func Bulk(d deps.Deps) http.HandlerFunc {
	limit := d.BulkMaxBytes
	if limit <= 0 {
		limit = defaultBulkMaxBytes
	}

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			msg := "Error: could not read the upload."
			if errors.As(err, &tooLarge) {
				msg = fmt.Sprintf("Error: file is larger than %d bytes.", limit)
			}
			d.Logger.Debug("bulk upload rejected", logger.Error(err))
			setMessage(w, noticeCookie, msg)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()
		if !verified(w, r, d) {
			return
		}
		ctx, err := visitorContext(r, d)
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}

		file, hdr, err := r.FormFile("file")
		if err != nil {
			setMessage(w, noticeCookie, "Error: please choose a file to upload.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		defer file.Close()

		msg, err := d.Dashboard.BulkImport(ctx, hdr.Filename, file)
		if err != nil {
			fail(w, r, d, err, "/")
			return
		}
		succeed(w, r, "/", msg)
	}
}
