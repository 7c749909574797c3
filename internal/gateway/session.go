package gateway

import (
	"context"
	"net/http"
	"sync"
)

// Session is the backend session of one dashboard visitor. It travels on
// the request context so concurrent visitors never share a login.
type Session struct {
	mu     sync.Mutex
	cookie string // "name=value", empty when logged out
}

// NewSession starts from a "name=value" cookie, or "" for none
func NewSession(cookie string) *Session {
	return &Session{cookie: cookie}
}

// Cookie returns the current backend cookie as "name=value"
func (s *Session) Cookie() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookie
}

// update applies the Set-Cookie headers of a backend response. An expired
// cookie clears the session.
func (s *Session) update(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	c := cookies[0]

	s.mu.Lock()
	defer s.mu.Unlock()
	if c.MaxAge < 0 || c.Value == "" {
		s.cookie = ""
		return
	}
	s.cookie = c.Name + "=" + c.Value
}

type sessionKey struct{}

// WithSession attaches s to ctx. Gateway calls made with the returned
// context send s instead of the gateway's own cookie jar, and record any
// cookie the backend sets back into s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached to ctx, if any
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
