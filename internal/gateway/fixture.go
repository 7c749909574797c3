package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// Defaults given to a domain added to a fixture
const (
	fixtureNewUptime = 99.9
	fixtureNewDNS    = "203.0.113.10"
	fixtureNewTag    = "new"
	fixturePlacehold = "—"

	liveStatus = "Live. status code 200"
)

// FixtureFile is the YAML layout of a fixture data file
//
//	domains:
//	  - domain: example.com
//	    status: "Live. status code 200"
//	    ssl_expiration: "2025-10-20"
//	    tags: [prod]
type FixtureFile struct {
	Domains []domain.RawDomain `yaml:"domains"`
}

// Fixture is an in-process domain source. It plays the backend for demos:
// add and remove change its own list, and the dashboard reloads from it.
type Fixture struct {
	mu      sync.Mutex
	domains []domain.RawDomain
	now     func() time.Time
}

var (
	_ Gateway   = (*Fixture)(nil)
	_ Checker   = (*Fixture)(nil)
	_ Simulator = (*Fixture)(nil)
)

// NewFixture creates a fixture holding the given entries, or the built-in
// sample set when none are given.
func NewFixture(entries ...domain.RawDomain) *Fixture {
	if len(entries) == 0 {
		entries = SampleDomains()
	}
	f := &Fixture{now: time.Now}
	for _, e := range entries {
		f.domains = append(f.domains, cloneRaw(e))
	}
	return f
}

// LoadFixture reads a YAML fixture file
func LoadFixture(path string) (*Fixture, error) {
	entries, err := readFixtureFile(path)
	if err != nil {
		return nil, err
	}
	return NewFixture(entries...), nil
}

// ReloadFile replaces the fixture's list with the contents of path. The
// current list is kept when the file cannot be read or is empty.
func (f *Fixture) ReloadFile(path string) error {
	entries, err := readFixtureFile(path)
	if err != nil {
		return err
	}

	domains := make([]domain.RawDomain, len(entries))
	for i, e := range entries {
		domains[i] = cloneRaw(e)
	}

	f.mu.Lock()
	f.domains = domains
	f.mu.Unlock()
	return nil
}

func readFixtureFile(path string) ([]domain.RawDomain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}

	var file FixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixture yaml: %w", err)
	}
	if len(file.Domains) == 0 {
		return nil, fmt.Errorf("fixture file %s has no domains", path)
	}
	return file.Domains, nil
}

// SampleDomains is the built-in demo set.
func SampleDomains() []domain.RawDomain {
	pct := func(v float64) *float64 { return &v }
	return []domain.RawDomain{
		{Domain: "example.com", Status: liveStatus, Uptime: pct(99.98), SSLExpiration: "2025-10-20", SSLIssuer: "Let's Encrypt R3", DNS: []string{"93.184.216.34"}, Registrar: "IANA", Tags: []string{"prod"}},
		{Domain: "desta-interfaces.net", Status: liveStatus, Uptime: pct(99.91), SSLExpiration: "2025-09-25", SSLIssuer: "ZeroSSL", DNS: []string{"203.0.113.52", "203.0.113.53"}, Registrar: "Namecheap", Tags: []string{"prod", "edge"}},
		{Domain: "lab.local", Status: "Connection timed out", Uptime: pct(96.12), SSLIssuer: "—", DNS: []string{"192.0.2.44"}, Registrar: "—", Tags: []string{"lab"}},
		{Domain: "api.domainmonitor.io", Status: liveStatus, Uptime: pct(99.73), SSLExpiration: "2025-09-18", SSLIssuer: "DigiCert TLS RSA", DNS: []string{"198.51.100.17"}, Registrar: "Google", Tags: []string{"prod", "api"}},
		{Domain: "staging.domainmonitor.io", Status: liveStatus, Uptime: pct(98.66), SSLExpiration: "2025-11-12", SSLIssuer: "Let's Encrypt R3", DNS: []string{"198.51.100.77"}, Registrar: "Cloudflare", Tags: []string{"staging"}},
		{Domain: "myshop.example", Status: liveStatus, Uptime: pct(99.22), SSLExpiration: "2025-09-29", SSLIssuer: "Sectigo", DNS: []string{"203.0.113.90"}, Registrar: "GoDaddy", Tags: []string{"prod", "ecom"}},
	}
}

// Domains returns a copy of the fixture's list
func (f *Fixture) Domains(_ context.Context) ([]domain.RawDomain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.RawDomain, len(f.domains))
	for i, d := range f.domains {
		out[i] = cloneRaw(d)
	}
	return out, nil
}

// AddDomain appends a new entry with demo defaults.
func (f *Fixture) AddDomain(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := f.addLocked(name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Domain %s added", name), nil
}

func (f *Fixture) addLocked(name string) error {
	const op = "add_domain"
	if name == "" {
		return &ValidationError{Op: op, Message: "Domain is required"}
	}
	if f.indexLocked(name) >= 0 {
		return &ValidationError{Op: op, Message: fmt.Sprintf("Domain %s already exists", name)}
	}
	uptime := fixtureNewUptime
	f.domains = append(f.domains, domain.RawDomain{
		Domain:    name,
		Status:    liveStatus,
		Uptime:    &uptime,
		SSLIssuer: fixturePlacehold,
		DNS:       []string{fixtureNewDNS},
		Registrar: fixturePlacehold,
		Tags:      []string{fixtureNewTag},
	})
	return nil
}

// RemoveDomain drops an entry. Unknown names are an error.
func (f *Fixture) RemoveDomain(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(name)
	if i < 0 {
		return "", &OperationError{Op: "remove_domain", Code: 404, Message: fmt.Sprintf("Domain %s not found", name)}
	}
	f.domains = append(f.domains[:i], f.domains[i+1:]...)
	return fmt.Sprintf("Domain %s removed", name), nil
}

// BulkUpload adds one domain per line; blank lines and lines starting
// with # are ignored. Rejected lines are counted, not fatal.
func (f *Fixture) BulkUpload(_ context.Context, _ string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	added, skipped := 0, 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// CSV exports put the domain in the first column
		if i := strings.IndexByte(line, ','); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if err := f.addLocked(line); err != nil {
			skipped++
			continue
		}
		added++
	}
	if err := sc.Err(); err != nil {
		return "", &OperationError{Op: "bulk_upload", Message: fmt.Sprintf("could not read file: %v", err)}
	}

	return fmt.Sprintf("Bulk upload complete: %d added, %d skipped", added, skipped), nil
}

// Logout is a no-op for local data
func (f *Fixture) Logout(context.Context) error { return nil }

// Simulated marks fixture uptime as demo data
func (f *Fixture) Simulated() bool { return true }

// CheckDomain reports from the fixture's own data, no network involved.
func (f *Fixture) CheckDomain(_ context.Context, name string) (CheckReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	report := CheckReport{
		Domain:            name,
		StatusCode:        domain.UnavailableToken,
		CertificateStatus: domain.UnavailableToken,
		CertificateExpiry: domain.UnavailableToken,
		Issuer:            domain.UnavailableToken,
	}

	i := f.indexLocked(name)
	if i < 0 {
		report.CertificateStatus = "failed"
		report.CertificateExpiry = "DNS resolution failed"
		return report, nil
	}

	r := domain.Normalize(f.domains[i])
	if r.Status == domain.StatusUp {
		report.StatusCode = 200
	}
	if r.SSLIssuer != "" {
		report.Issuer = r.SSLIssuer
	}
	if days, ok := domain.SSLDayOffset(r.SSLExpiration, f.now()); ok {
		report.CertificateExpiry = r.SSLExpiration
		report.CertificateStatus = "valid"
		if days < 0 {
			report.CertificateStatus = "expired"
		}
	}
	report.Healthy = report.StatusCode == 200 && report.CertificateStatus == "valid"
	return report, nil
}

func (f *Fixture) indexLocked(name string) int {
	for i, d := range f.domains {
		if d.Domain == name {
			return i
		}
	}
	return -1
}

func cloneRaw(d domain.RawDomain) domain.RawDomain {
	c := d
	if d.Uptime != nil {
		v := *d.Uptime
		c.Uptime = &v
	}
	c.Tags = append([]string(nil), d.Tags...)
	c.DNS = append([]string(nil), d.DNS...)
	return c
}
