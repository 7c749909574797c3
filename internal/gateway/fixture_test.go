package gateway

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

func TestNewFixtureDefaultsToSamples(t *testing.T) {
	f := NewFixture()

	raws, err := f.Domains(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, len(SampleDomains()))

	records := domain.NormalizeAll(raws)
	assert.Equal(t, "example.com", records[0].Domain)
	assert.Equal(t, domain.StatusUp, records[0].Status)
	assert.Equal(t, domain.StatusDown, records[2].Status, "lab.local is down")
}

func TestFixtureDomainsReturnsCopies(t *testing.T) {
	f := NewFixture()

	raws, _ := f.Domains(context.Background())
	raws[0].Tags[0] = "mutated"
	*raws[0].Uptime = 0

	again, _ := f.Domains(context.Background())
	assert.Equal(t, "prod", again[0].Tags[0])
	assert.Equal(t, 99.98, *again[0].Uptime)
}

func TestFixtureAddDomain(t *testing.T) {
	ctx := context.Background()
	f := NewFixture()

	msg, err := f.AddDomain(ctx, "  mydomain.com ")
	require.NoError(t, err)
	assert.Contains(t, msg, "mydomain.com")

	raws, _ := f.Domains(ctx)
	added := domain.Normalize(raws[len(raws)-1])
	assert.Equal(t, "mydomain.com", added.Domain)
	assert.Equal(t, domain.StatusUp, added.Status)
	require.NotNil(t, added.Uptime)
	assert.Equal(t, 99.9, *added.Uptime)
	assert.Equal(t, []string{"new"}, added.Tags)
	assert.Equal(t, []string{"203.0.113.10"}, added.DNSRecords)
	assert.Equal(t, "—", added.SSLIssuer)
	assert.Empty(t, added.SSLExpiration)

	_, err = f.AddDomain(ctx, "mydomain.com")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "already exists")

	_, err = f.AddDomain(ctx, "   ")
	require.ErrorAs(t, err, &verr)
}

func TestFixtureRemoveDomain(t *testing.T) {
	ctx := context.Background()
	f := NewFixture()

	_, err := f.RemoveDomain(ctx, "lab.local")
	require.NoError(t, err)

	raws, _ := f.Domains(ctx)
	for _, r := range raws {
		assert.NotEqual(t, "lab.local", r.Domain)
	}
	assert.Len(t, raws, len(SampleDomains())-1)

	_, err = f.RemoveDomain(ctx, "lab.local")
	var oerr *OperationError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, 404, oerr.Code)
}

func TestFixtureBulkUpload(t *testing.T) {
	ctx := context.Background()
	f := NewFixture(domain.RawDomain{Domain: "a.com", Status: "Live"})

	input := strings.Join([]string{
		"# exported list",
		"b.com",
		"",
		"c.com,prod",
		"a.com",
		"b.com",
	}, "\n")

	msg, err := f.BulkUpload(ctx, "list.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "Bulk upload complete: 2 added, 2 skipped", msg)

	raws, _ := f.Domains(ctx)
	names := make([]string, len(raws))
	for i, r := range raws {
		names[i] = r.Domain
	}
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, names)
}

func TestFixtureCheckDomain(t *testing.T) {
	f := NewFixture()
	f.now = func() time.Time { return time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC) }

	report, err := f.CheckDomain(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, 200, report.StatusCode)
	assert.Equal(t, "valid", report.CertificateStatus)
	assert.True(t, report.Healthy)

	report, _ = f.CheckDomain(context.Background(), "lab.local")
	assert.Equal(t, domain.UnavailableToken, report.StatusCode)
	assert.False(t, report.Healthy)

	report, _ = f.CheckDomain(context.Background(), "unknown.org")
	assert.Equal(t, "failed", report.CertificateStatus)
	assert.False(t, report.Healthy)

	f.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	report, _ = f.CheckDomain(context.Background(), "example.com")
	assert.Equal(t, "expired", report.CertificateStatus)
	assert.False(t, report.Healthy)
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")

	content := `domains:
  - domain: one.com
    status: "Live. status code 200"
    ssl_expiration: "2025-10-20"
    ssl_issuer: R3
    uptime: 99.5
    tags: [prod]
  - domain: two.org
    status: timeout
    ssl_expiration: N/A
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := LoadFixture(path)
	require.NoError(t, err)

	raws, _ := f.Domains(context.Background())
	require.Len(t, raws, 2)
	assert.Equal(t, "one.com", raws[0].Domain)
	require.NotNil(t, raws[0].Uptime)
	assert.Equal(t, 99.5, *raws[0].Uptime)
	assert.Equal(t, "N/A", raws[1].SSLExpiration)
}

func TestLoadFixtureErrors(t *testing.T) {
	_, err := LoadFixture("/nonexistent/fixture.yaml")
	assert.Error(t, err)

	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("domains: []\n"), 0o644))
	_, err = LoadFixture(empty)
	assert.Error(t, err)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("domains: [\n"), 0o644))
	_, err = LoadFixture(broken)
	assert.Error(t, err)
}

func TestFixtureReloadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("domains:\n  - domain: one.com\n"), 0o644))

	f, err := LoadFixture(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("domains:\n  - domain: two.com\n  - domain: three.com\n"), 0o644))
	require.NoError(t, f.ReloadFile(path))

	raws, _ := f.Domains(context.Background())
	require.Len(t, raws, 2)
	assert.Equal(t, "two.com", raws[0].Domain)

	require.NoError(t, os.WriteFile(path, []byte("domains: [\n"), 0o644))
	assert.Error(t, f.ReloadFile(path))

	raws, _ = f.Domains(context.Background())
	assert.Len(t, raws, 2, "a broken file keeps the current list")
}

func TestFixtureCapabilities(t *testing.T) {
	var g Gateway = NewFixture()

	sim, ok := g.(Simulator)
	require.True(t, ok)
	assert.True(t, sim.Simulated())

	_, ok = g.(Checker)
	assert.True(t, ok)

	_, ok = g.(Authenticator)
	assert.False(t, ok)
}
