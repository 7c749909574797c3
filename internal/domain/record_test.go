package domain

import (
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"Live. status code 200", StatusUp},
		{"live", StatusUp},
		{"LIVE - 301", StatusUp},
		{"  Live", StatusUp},
		{"timeout", StatusDown},
		{"Down", StatusDown},
		{"liv", StatusDown},
		{"not live", StatusDown},
		{"", StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseStatus(tt.raw); got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	uptime := 99.98
	raw := RawDomain{
		Domain:        " example.com ",
		Status:        "Live. status code 200",
		SSLExpiration: "2025-10-20",
		SSLIssuer:     "Let's Encrypt R3",
		Uptime:        &uptime,
		Tags:          []string{"prod", " ", "edge"},
		DNS:           []string{"93.184.216.34"},
		Registrar:     "IANA",
	}

	r := Normalize(raw)

	if r.Domain != "example.com" {
		t.Errorf("Domain = %q, want trimmed", r.Domain)
	}
	if r.Status != StatusUp {
		t.Errorf("Status = %v, want up", r.Status)
	}
	if r.Uptime == nil || *r.Uptime != 99.98 {
		t.Errorf("Uptime = %v, want 99.98", r.Uptime)
	}
	if r.Uptime == raw.Uptime {
		t.Error("Uptime should be copied, not aliased")
	}
	if len(r.Tags) != 2 || r.Tags[0] != "prod" || r.Tags[1] != "edge" {
		t.Errorf("Tags = %v, want [prod edge]", r.Tags)
	}
	if len(r.DNSRecords) != 1 {
		t.Errorf("DNSRecords = %v", r.DNSRecords)
	}
}

func TestNormalizeAllSkipsEmptyDomains(t *testing.T) {
	records := NormalizeAll([]RawDomain{
		{Domain: "a.com", Status: "live"},
		{Domain: "  ", Status: "live"},
		{Domain: "b.com", Status: "timeout"},
	})

	if len(records) != 2 {
		t.Fatalf("NormalizeAll() returned %d records, want 2", len(records))
	}
	if records[0].Domain != "a.com" || records[1].Domain != "b.com" {
		t.Errorf("NormalizeAll() order = %v, %v", records[0].Domain, records[1].Domain)
	}
	if records[1].Status != StatusDown {
		t.Errorf("b.com status = %v, want down", records[1].Status)
	}
}

func TestRecordClone(t *testing.T) {
	uptime := 98.5
	r := Record{Domain: "a.com", Uptime: &uptime, Tags: []string{"prod"}, DNSRecords: []string{"10.0.0.1"}}

	c := r.Clone()
	*c.Uptime = 1
	c.Tags[0] = "changed"
	c.DNSRecords[0] = "changed"

	if *r.Uptime != 98.5 || r.Tags[0] != "prod" || r.DNSRecords[0] != "10.0.0.1" {
		t.Errorf("Clone() aliases the original: %+v", r)
	}
}

func TestHasTag(t *testing.T) {
	r := Record{Tags: []string{"prod", "api"}}
	if !r.HasTag("api") {
		t.Error("HasTag(api) = false, want true")
	}
	if r.HasTag("ap") {
		t.Error("HasTag(ap) = true, tags must match exactly")
	}
}
