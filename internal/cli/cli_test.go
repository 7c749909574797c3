package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/domon/internal/config"
	"github.com/MrSnakeDoc/domon/internal/domain"
	"github.com/MrSnakeDoc/domon/internal/gateway"
	"github.com/MrSnakeDoc/domon/internal/logger"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	c := New(strings.NewReader(stdin), &out, &errOut)
	c.newLogger = func(*config.Config) logger.Logger { return logger.NewNop() }

	code := c.Run(context.Background(), append([]string{"--no-color"}, args...))
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func fixture(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return run(t, stdin, append([]string{"--source", config.SourceFixture}, args...)...)
}

func TestListFixture(t *testing.T) {
	res := fixture(t, "", "list")

	require.Equal(t, 0, res.code, res.stderr)
	for _, d := range []string{"example.com", "lab.local", "myshop.example"} {
		assert.Contains(t, res.stdout, d)
	}
	assert.Contains(t, res.stdout, "6 domains")
	assert.Contains(t, res.stderr, "Showing demo data.")
}

func TestListQueryAndFilter(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"query", []string{"--query", "shop"}, []string{"myshop.example", "1 domains"}, []string{"example.com", "lab.local"}},
		{"down", []string{"--filter", "down"}, []string{"lab.local"}, []string{"example.com"}},
		{"tag", []string{"-f", "tag:staging"}, []string{"staging.domainmonitor.io"}, []string{"lab.local"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fixture(t, "", append([]string{"list"}, tt.args...)...)
			require.Equal(t, 0, res.code, res.stderr)
			for _, w := range tt.want {
				assert.Contains(t, res.stdout, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, res.stdout, w)
			}
		})
	}
}

func TestListHelpDescribesSearch(t *testing.T) {
	res := run(t, "", "list", "--help")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "search on domain, registrar and tags")

	res = fixture(t, "", "list", "--query", "namecheap")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "desta-interfaces.net", "registrar matches")
	assert.NotContains(t, res.stdout, "myshop.example")
}

func TestListUnknownFilter(t *testing.T) {
	res := fixture(t, "", "list", "--filter", "sideways")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown filter")
}

func TestListJSON(t *testing.T) {
	res := fixture(t, "", "list", "--filter", "down", "--json")
	require.Equal(t, 0, res.code, res.stderr)

	var v struct {
		Filter string          `json:"filter"`
		Rows   []domain.Record `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &v))
	assert.Equal(t, "down", v.Filter)
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "lab.local", v.Rows[0].Domain)
}

func TestShow(t *testing.T) {
	res := fixture(t, "", "show", "example.com")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Let's Encrypt R3")
	assert.Contains(t, res.stdout, "IANA")

	res = fixture(t, "", "show", "missing.com")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown domain")
}

func TestAdd(t *testing.T) {
	res := fixture(t, "", "add", "newsite.com")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Domain newsite.com added")

	res = fixture(t, "", "add", "example.com")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Error: Domain example.com already exists")
}

func TestRemovePrompts(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		wantCode int
		wantOut  string
		wantErr  string
	}{
		{"declined", "n\n", 1, "", "Removal cancelled."},
		{"no input", "", 1, "", "Removal cancelled."},
		{"accepted", "yes\n", 0, "Domain example.com removed", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fixture(t, tt.stdin, "remove", "example.com")
			assert.Equal(t, tt.wantCode, res.code)
			assert.Contains(t, res.stdout, "Are you sure you want to remove example.com? [y/N]")
			assert.Contains(t, res.stdout, tt.wantOut)
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}
}

func TestRemoveYesSkipsPrompt(t *testing.T) {
	res := fixture(t, "", "remove", "--yes", "missing.com")
	assert.Equal(t, 1, res.code)
	assert.NotContains(t, res.stdout, "Are you sure")
	assert.Contains(t, res.stderr, "Domain missing.com not found")
}

func TestRemoveDeclinedSendsNothing(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	res := run(t, "n\n", "--source", config.SourceAPI, "--api-url", srv.URL, "remove", "example.com")
	assert.Equal(t, 1, res.code)
	assert.Zero(t, hits)
}

func TestImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte("a.com\nb.com\n# comment\nexample.com\n"), 0o600))

	res := fixture(t, "", "import", path)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Bulk upload complete: 2 added, 1 skipped")

	res = fixture(t, "c.com\n", "import", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "1 added, 0 skipped")

	res = fixture(t, "", "import", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "failed to open")
}

func TestCheck(t *testing.T) {
	t.Setenv("DOMON_ALLOWED_TLDS", "com,local")

	res := fixture(t, "", "check", "example.com", "lab.local")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "example.com")
	assert.Contains(t, res.stdout, "Let's Encrypt R3")

	res = fixture(t, "", "check", "--fail-unhealthy", "lab.local")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "1 of 1 domains unhealthy")

	res = fixture(t, "", "check", "shop.example")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "invalid url format")
	assert.Contains(t, res.stderr, "1 of 1 checks failed")
}

func TestLoginNotNeeded(t *testing.T) {
	res := fixture(t, "", "login")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No login needed for the fixture source.")
}

func newBackend(t *testing.T, domainsStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/domains", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(domainsStatus)
		if domainsStatus == http.StatusOK {
			_, _ = w.Write([]byte(`[{"domain":"example.com","status":"Live. status code 200","ssl_expiration":"N/A","ssl_issuer":"N/A"}]`))
		}
	})
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "alice" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		_, _ = w.Write([]byte(`{"message":"Logged in"}`))
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func api(t *testing.T, srv *httptest.Server, stdin string, args ...string) result {
	t.Helper()
	return run(t, stdin, append([]string{"--source", config.SourceAPI, "--api-url", srv.URL}, args...)...)
}

func TestListExpiredSession(t *testing.T) {
	res := api(t, newBackend(t, http.StatusUnauthorized), "", "list")

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, gateway.ErrAuthExpired.Error())
	assert.Contains(t, res.stderr, "domon login")
}

func TestListLoadError(t *testing.T) {
	res := api(t, newBackend(t, http.StatusInternalServerError), "", "list")

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "Could not load domain data.")
	assert.Contains(t, res.stderr, "Could not load domain data.")
}

func TestListAPI(t *testing.T) {
	res := api(t, newBackend(t, http.StatusOK), "", "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "example.com")
	assert.NotContains(t, res.stderr, "demo data")
}

func TestLoginPrintsSession(t *testing.T) {
	srv := newBackend(t, http.StatusOK)

	res := api(t, srv, "alice\nsecret\n", "login")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Username: ")
	assert.Contains(t, res.stdout, "Logged in")
	assert.Contains(t, res.stdout, "export DOMON_SESSION_COOKIE='session=abc123'")

	res = api(t, srv, "", "login", "-u", "alice", "-p", "wrong")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Invalid credentials")
}

func TestLogoutIgnoresBackendFailure(t *testing.T) {
	res := api(t, newBackend(t, http.StatusOK), "", "logout")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Logged out.")
}

func TestVersion(t *testing.T) {
	res := run(t, "", "version")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "domon ")
}

func TestEnvFile(t *testing.T) {
	t.Setenv("DOMON_SOURCE", "")
	require.NoError(t, os.Unsetenv("DOMON_SOURCE"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOMON_SOURCE=fixture\n"), 0o600))

	res := run(t, "", "--env-file", path, "list")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "example.com")

	res = run(t, "", "--env-file", filepath.Join(t.TempDir(), "missing.env"), "list")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "missing.env")
}

func TestInvalidConfig(t *testing.T) {
	res := run(t, "", "--source", "ftp", "list")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "unknown DOMON_SOURCE")
}
