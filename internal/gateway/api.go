package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/logger"
	"github.com/MrSnakeDoc/domon/internal/metrics"
	"github.com/MrSnakeDoc/domon/internal/utils"
)

// Backend endpoints
const (
	pathDomains    = "/api/domains"
	pathAdd        = "/api/add_domain"
	pathRemove     = "/api/remove_domain"
	pathBulkUpload = "/api/bulk_upload"
	pathLogout     = "/api/logout"
	pathLogin      = "/api/login"
	pathCheck      = "/check_domain"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 8 << 20

// APIConfig configures the HTTP gateway
type APIConfig struct {
	BaseURL       string        // ex: http://localhost:8080
	Timeout       time.Duration // per call
	SessionCookie string        // optional "name=value" carried on every call
	HTTPClient    *http.Client  // optional, a default client with a cookie jar is built otherwise
}

// API is the Gateway backed by the live monitoring backend.
// Without a Session on the context, the cookie set by the backend on login
// is kept in the client's jar (CLI, background reloads). With one, the call
// uses a jar-less client and only that visitor's cookie.
type API struct {
	base    *url.URL
	client  *http.Client
	visitor *http.Client // same transport, no jar
	timeout time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

var (
	_ Gateway       = (*API)(nil)
	_ Authenticator = (*API)(nil)
	_ Checker       = (*API)(nil)
)

// NewAPI creates the HTTP gateway
func NewAPI(cfg APIConfig, log logger.Logger, m *metrics.Metrics) (*API, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client = &http.Client{Jar: jar}
	}

	if cfg.SessionCookie != "" {
		if client.Jar == nil {
			return nil, errors.New("session cookie given but http client has no cookie jar")
		}
		name, value, ok := strings.Cut(cfg.SessionCookie, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("session cookie must look like name=value")
		}
		client.Jar.SetCookies(base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	}

	if log == nil {
		log = logger.NewNop()
	}

	visitor := &http.Client{
		Transport:     client.Transport,
		CheckRedirect: client.CheckRedirect,
		Timeout:       client.Timeout,
	}

	return &API{
		base:    base,
		client:  client,
		visitor: visitor,
		timeout: cfg.Timeout,
		log:     log,
		metrics: m,
	}, nil
}

// Session returns the backend session cookie as "name=value", or "" if none.
func (a *API) Session() string {
	if a.client.Jar == nil {
		return ""
	}
	cookies := a.client.Jar.Cookies(a.base)
	if len(cookies) == 0 {
		return ""
	}
	return cookies[0].Name + "=" + cookies[0].Value
}

// Domains fetches GET /api/domains.
func (a *API) Domains(ctx context.Context) ([]domain.RawDomain, error) {
	const op = "domains"

	status, body, err := a.do(ctx, op, http.MethodGet, pathDomains, nil, "")
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrAuthExpired
	case !is2xx(status):
		return nil, &LoadError{Code: status}
	}

	var raws []domain.RawDomain
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("failed to decode domain list: %w", err)}
	}
	if raws == nil {
		raws = []domain.RawDomain{}
	}
	return raws, nil
}

// AddDomain posts {"domain": name} to /api/add_domain.
func (a *API) AddDomain(ctx context.Context, name string) (string, error) {
	const op = "add_domain"

	status, msg, err := a.postJSON(ctx, op, pathAdd, map[string]string{"domain": name})
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusUnauthorized:
		return "", ErrAuthExpired
	case !is2xx(status):
		return "", &ValidationError{Op: op, Message: msg}
	}
	return msg, nil
}

// RemoveDomain posts {"domain": name} to /api/remove_domain.
func (a *API) RemoveDomain(ctx context.Context, name string) (string, error) {
	const op = "remove_domain"

	status, msg, err := a.postJSON(ctx, op, pathRemove, map[string]string{"domain": name})
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusUnauthorized:
		return "", ErrAuthExpired
	case !is2xx(status):
		return "", &OperationError{Op: op, Code: status, Message: msg}
	}
	return msg, nil
}

// BulkUpload sends r as the multipart field "file" to /api/bulk_upload.
func (a *API) BulkUpload(ctx context.Context, filename string, r io.Reader) (string, error) {
	const op = "bulk_upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	status, body, err := a.do(ctx, op, http.MethodPost, pathBulkUpload, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	msg := messageOf(status, body)
	switch {
	case status == http.StatusUnauthorized:
		return "", ErrAuthExpired
	case !is2xx(status):
		return "", &OperationError{Op: op, Code: status, Message: msg}
	}
	return msg, nil
}

// Logout posts to /api/logout. Callers ignore the result.
func (a *API) Logout(ctx context.Context) error {
	status, _, err := a.do(ctx, "logout", http.MethodPost, pathLogout, nil, "")
	if err != nil {
		return err
	}
	if !is2xx(status) {
		return fmt.Errorf("logout returned %d", status)
	}
	return nil
}

// Login forwards credentials to /api/login. On success the backend's
// session cookie lands in the context Session, or in the jar without one.
func (a *API) Login(ctx context.Context, username, password string) (string, error) {
	const op = "login"

	status, msg, err := a.postJSON(ctx, op, pathLogin, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", &ValidationError{Op: op, Message: msg}
	}
	return msg, nil
}

// CheckDomain runs GET /check_domain?domain=name.
func (a *API) CheckDomain(ctx context.Context, name string) (CheckReport, error) {
	const op = "check_domain"

	path := pathCheck + "?" + url.Values{"domain": {name}}.Encode()
	status, body, err := a.do(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return CheckReport{}, err
	}
	switch {
	case status == http.StatusUnauthorized:
		return CheckReport{}, ErrAuthExpired
	case !is2xx(status):
		return CheckReport{}, &ValidationError{Op: op, Message: messageOf(status, body)}
	}

	var report CheckReport
	if err := json.Unmarshal(body, &report); err != nil {
		return CheckReport{}, &OperationError{Op: op, Code: status, Message: "malformed check report"}
	}
	return report, nil
}

func (a *API) postJSON(ctx context.Context, op, path string, payload any) (int, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to encode %s request: %w", op, err)
	}
	status, body, err := a.do(ctx, op, http.MethodPost, path, bytes.NewReader(data), "application/json")
	if err != nil {
		return 0, "", err
	}
	return status, messageOf(status, body), nil
}

// do sends one request and reads the whole (capped) body.
// A non-nil error is always a *NetworkError.
func (a *API) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (int, []byte, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, a.base.String()+path, body)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := a.client
	sess, perVisitor := SessionFrom(ctx)
	if perVisitor {
		client = a.visitor
		if c := sess.Cookie(); c != "" {
			req.Header.Set("Cookie", c)
		}
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		a.metrics.ObserveGateway(op, "network", time.Since(start))
		a.log.Warn("backend request failed",
			logger.String("op", op),
			logger.Error(err),
		)
		return 0, nil, &NetworkError{Op: op, Err: err}
	}
	defer utils.Close(resp.Body)
	if perVisitor {
		sess.update(resp.Cookies())
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	took := time.Since(start)
	if err != nil {
		a.metrics.ObserveGateway(op, "network", took)
		return 0, nil, &NetworkError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	a.metrics.ObserveGateway(op, outcome(resp.StatusCode), took)
	a.log.Debug("backend request",
		logger.String("op", op),
		logger.Int("status", resp.StatusCode),
		logger.Duration("took", took),
	)
	return resp.StatusCode, data, nil
}

// messageOf extracts {"message": "..."} from a response body, falling back
// to the status text.
func messageOf(status int, body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

func is2xx(status int) bool { return status >= 200 && status < 300 }

func outcome(status int) string {
	switch {
	case is2xx(status):
		return "ok"
	case status == http.StatusUnauthorized:
		return "auth"
	case status >= 400 && status < 500:
		return "rejected"
	default:
		return "error"
	}
}
