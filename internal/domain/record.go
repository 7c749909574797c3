package domain

import (
	"strings"
)

// Status is the normalized health of a monitored domain.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// livePrefix marks a backend status string as healthy ("Live. status code 200").
const livePrefix = "live"

// ParseStatus normalizes a raw backend status string.
//
// Backends disagree on casing ("Live", "live", "LIVE"), so the prefix check
// is case-insensitive after trimming surrounding whitespace. Anything that
// does not start with "live" is down, including the empty string.
func ParseStatus(raw string) Status {
	s := strings.TrimSpace(raw)
	if len(s) >= len(livePrefix) && strings.EqualFold(s[:len(livePrefix)], livePrefix) {
		return StatusUp
	}
	return StatusDown
}

// RawDomain is one entry of GET /api/domains as the backend sends it.
// Only domain, status, ssl_expiration and ssl_issuer are guaranteed; the
// other fields are filled by richer sources (fixtures, payload files).
type RawDomain struct {
	Domain        string   `json:"domain" yaml:"domain"`
	Status        string   `json:"status" yaml:"status"`
	SSLExpiration string   `json:"ssl_expiration" yaml:"ssl_expiration"`
	SSLIssuer     string   `json:"ssl_issuer" yaml:"ssl_issuer"`
	Uptime        *float64 `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Tags          []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	DNS           []string `json:"dns,omitempty" yaml:"dns,omitempty"`
	Registrar     string   `json:"registrar,omitempty" yaml:"registrar,omitempty"`
}

// Record is a monitored domain as the dashboard sees it.
//
// A Record is uniquely identified by Domain within a store. Status is always
// StatusUp or StatusDown. SSLExpiration and SSLIssuer carry either real data
// or the backend's error token verbatim ("N/A", "DNS resolution failed", ...).
type Record struct {
	Domain        string   `json:"domain"`
	Status        Status   `json:"status"`
	SSLExpiration string   `json:"ssl_expiration,omitempty"`
	SSLIssuer     string   `json:"ssl_issuer,omitempty"`
	Uptime        *float64 `json:"uptime,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	DNSRecords    []string `json:"dns_records,omitempty"`
	Registrar     string   `json:"registrar,omitempty"`
}

// Normalize converts a backend entry into a Record.
func Normalize(raw RawDomain) Record {
	r := Record{
		Domain:        strings.TrimSpace(raw.Domain),
		Status:        ParseStatus(raw.Status),
		SSLExpiration: strings.TrimSpace(raw.SSLExpiration),
		SSLIssuer:     strings.TrimSpace(raw.SSLIssuer),
		Registrar:     strings.TrimSpace(raw.Registrar),
		Tags:          cleanList(raw.Tags),
		DNSRecords:    cleanList(raw.DNS),
	}
	if raw.Uptime != nil {
		v := *raw.Uptime
		r.Uptime = &v
	}
	return r
}

// NormalizeAll converts a whole backend response, skipping entries
// without a domain name.
func NormalizeAll(raws []RawDomain) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		r := Normalize(raw)
		if r.Domain == "" {
			continue
		}
		records = append(records, r)
	}
	return records
}

// HasTag reports whether the record carries label.
func (r Record) HasTag(label string) bool {
	for _, t := range r.Tags {
		if t == label {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can't alias store-owned slices.
func (r Record) Clone() Record {
	c := r
	if r.Uptime != nil {
		v := *r.Uptime
		c.Uptime = &v
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.DNSRecords != nil {
		c.DNSRecords = append([]string(nil), r.DNSRecords...)
	}
	return c
}

func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
