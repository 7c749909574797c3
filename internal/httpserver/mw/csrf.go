package mw

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"net/http"
)

// Double-submit token: the cookie and the form field must carry the same
// value. The cookie is SameSite=Strict, so a cross-site form never has it.
const (
	CSRFCookie = "domon_csrf"
	CSRFField  = "csrf_token"
	CSRFHeader = "X-CSRF-Token"

	maxCSRFLen = 128
)

type csrfKey struct{}

// CSRF makes sure the visitor holds a token cookie and exposes the token
// to the page templates through CSRFToken. It does not reject anything
// itself: multipart bodies are only readable once the handler has capped
// them, so handlers call ValidCSRF after parsing their form.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookie); err == nil && c.Value != "" && len(c.Value) <= maxCSRFLen {
				token = c.Value
			}
			if token == "" {
				token = rand.Text()
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteStrictMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
		})
	}
}

// CSRFToken returns the token CSRF attached to ctx, "" outside of it
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

// ValidCSRF reports whether the request carries the token of its own
// cookie, in the form field or the header.
func ValidCSRF(r *http.Request) bool {
	c, err := r.Cookie(CSRFCookie)
	if err != nil || c.Value == "" || len(c.Value) > maxCSRFLen {
		return false
	}
	sent := r.PostFormValue(CSRFField)
	if sent == "" {
		sent = r.Header.Get(CSRFHeader)
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(sent)) == 1
}
