package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data sources the dashboard can be backed by.
const (
	SourceAPI     = "api"     // live monitoring backend over HTTP
	SourceFixture = "fixture" // in-process sample data (optionally from a YAML file)
	SourcePayload = "payload" // read-only JSON payload injected at startup
)

type Config struct {
	ListenPort      string        // ex: ":8090"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Data source
	Source         string        // api | fixture | payload
	APIURL         string        // base URL of the monitoring backend (ex: http://localhost:8080)
	APITimeout     time.Duration // per-call timeout against the backend
	SessionCookie  string        // optional pre-established backend session ("name=value")
	FixtureFile    string        // optional YAML sample data, built-in samples when empty
	PayloadFile    string        // JSON file in the GET /api/domains shape
	ReloadInterval time.Duration // background reload period, 0 disables it
	AllowedTLDs    []string      // TLDs accepted by the single-domain check
	BulkMaxBytes   int64         // max size of a bulk upload accepted by the dashboard

	// Rate limiting of backend-bound requests (per client IP)
	MutationBurst        int
	MutationRefillPerMin int
	ReadBurst            int // page loads that fetch the domain list
	ReadRefillPerMin     int

	// Redis (optional, last-known-good snapshot)
	RedisAddr           string        // ex: "localhost:6379", empty disables snapshots
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout
	RedisRT             time.Duration // Redis read timeout
	RedisWT             time.Duration // Redis write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int           // connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold  int           // warn after this many attempts
	SnapshotTTL         time.Duration // how long a stored snapshot stays usable

	AllowedCIDRS []string // restrict ops endpoints (healthz, readyz, metrics, reload)
	AllowedHosts []string // Host headers accepted by the dashboard, empty accepts any
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// Load reads the configuration from the environment. It never panics;
// call Validate before using the result.
func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("DOMON_LISTEN_PORT", ":8090"),
		ShutdownTimeout: mustDuration("DOMON_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("DOMON_LOG_LEVEL", "info"),
		PrettyLog: mustBool("DOMON_PRETTY_LOG", true),

		// Data source
		Source:         strings.ToLower(getenv("DOMON_SOURCE", SourceAPI)),
		APIURL:         strings.TrimRight(getenv("DOMON_API_URL", "http://localhost:8080"), "/"),
		APITimeout:     mustDuration("DOMON_API_TIMEOUT", 10*time.Second),
		SessionCookie:  getenv("DOMON_SESSION_COOKIE", ""),
		FixtureFile:    getenv("DOMON_FIXTURE_FILE", ""),
		PayloadFile:    getenv("DOMON_PAYLOAD_FILE", ""),
		ReloadInterval: mustDuration("DOMON_RELOAD_INTERVAL", 5*time.Minute),
		AllowedTLDs:    normalizeTLDs(splitAndTrim(getenv("DOMON_ALLOWED_TLDS", "com,org,net,edu"))),
		BulkMaxBytes:   int64(getenvInt("DOMON_BULK_MAX_BYTES", 10<<20)),

		MutationBurst:        getenvInt("DOMON_MUTATION_BURST", 10),
		MutationRefillPerMin: getenvInt("DOMON_MUTATION_REFILL_PER_MIN", 30),
		ReadBurst:            getenvInt("DOMON_READ_BURST", 60),
		ReadRefillPerMin:     getenvInt("DOMON_READ_REFILL_PER_MIN", 120),

		// Redis settings
		RedisAddr:           getenv("DOMON_REDIS_ADDR", ""),
		RedisUser:           getenv("DOMON_REDIS_USERNAME", ""),
		RedisPassword:       getenv("DOMON_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("DOMON_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		SnapshotTTL:         mustDuration("DOMON_SNAPSHOT_TTL", 72*time.Hour),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("DOMON_ALLOWED_CIDRS", "")),
		AllowedHosts: splitAndTrim(getenv("DOMON_ALLOWED_HOSTS", "")),
		TrustProxy:   mustBool("DOMON_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfgCopy.SessionCookie != "" {
			cfgCopy.SessionCookie = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.Source {
	case SourceAPI:
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("DOMON_API_URL must be an absolute URL, got %q", c.APIURL))
		}
	case SourceFixture:
	case SourcePayload:
		if c.PayloadFile == "" {
			errs = append(errs, errors.New("DOMON_PAYLOAD_FILE is required when DOMON_SOURCE=payload"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DOMON_SOURCE %q (want %s, %s or %s)", c.Source, SourceAPI, SourceFixture, SourcePayload))
	}

	if c.APITimeout <= 0 {
		errs = append(errs, fmt.Errorf("DOMON_API_TIMEOUT must be > 0, got %v", c.APITimeout))
	}
	if c.ReloadInterval < 0 {
		errs = append(errs, fmt.Errorf("DOMON_RELOAD_INTERVAL must be >= 0, got %v", c.ReloadInterval))
	}
	if c.BulkMaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("DOMON_BULK_MAX_BYTES must be > 0, got %d", c.BulkMaxBytes))
	}

	return errors.Join(errs...)
}

// SnapshotsEnabled reports whether a redis address was configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.RedisAddr != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// normalizeTLDs lowercases and strips the leading dot.
// Examples: ".COM" -> "com", "co.uk" -> "co.uk"
func normalizeTLDs(tlds []string) []string {
	if len(tlds) == 0 {
		return nil
	}
	out := make([]string, 0, len(tlds))
	seen := make(map[string]bool, len(tlds))
	for _, tld := range tlds {
		tld = strings.TrimPrefix(strings.ToLower(tld), ".")
		if tld == "" || seen[tld] {
			continue
		}
		seen[tld] = true
		out = append(out, tld)
	}
	return out
}
