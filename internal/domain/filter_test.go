package domain

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)

func sampleRecords() []Record {
	return []Record{
		{Domain: "example.com", Status: StatusUp, SSLExpiration: "2025-10-20", Registrar: "IANA", Tags: []string{"prod"}},
		{Domain: "desta-interfaces.net", Status: StatusUp, SSLExpiration: "2025-09-25", Registrar: "Namecheap", Tags: []string{"prod", "edge"}},
		{Domain: "lab.local", Status: StatusDown, SSLIssuer: "—", Registrar: "—", Tags: []string{"lab"}},
		{Domain: "api.domainmonitor.io", Status: StatusUp, SSLExpiration: "2025-09-18", Registrar: "Google", Tags: []string{"prod", "api"}},
		{Domain: "staging.domainmonitor.io", Status: StatusUp, SSLExpiration: "2025-11-12", Registrar: "Cloudflare", Tags: []string{"staging"}},
		{Domain: "myshop.example", Status: StatusUp, SSLExpiration: "2025-09-29", Registrar: "GoDaddy", Tags: []string{"prod", "ecom"}},
		{Domain: "broken.example.org", Status: StatusDown, SSLExpiration: "DNS resolution failed", SSLIssuer: "N/A"},
	}
}

func domains(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Domain
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// isSubsequence reports whether sub appears in all in the same relative order.
func isSubsequence(sub, all []Record) bool {
	i := 0
	for _, r := range all {
		if i < len(sub) && sub[i].Domain == r.Domain {
			i++
		}
	}
	return i == len(sub)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{in: "", want: AllFilter},
		{in: "all", want: AllFilter},
		{in: "up", want: Filter{Kind: FilterUp}},
		{in: "down", want: Filter{Kind: FilterDown}},
		{in: " warn ", want: Filter{Kind: FilterWarn}},
		{in: "tag:prod", want: TagFilter("prod")},
		{in: "tag:", wantErr: true},
		{in: "tag: ", wantErr: true},
		{in: "expired", wantErr: true},
		{in: "UP", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseFilter(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFilter(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.String() == "" {
				t.Errorf("Filter.String() is empty for %q", tt.in)
			}
		})
	}
}

func TestFilterStringRoundTrip(t *testing.T) {
	for _, s := range []string{"all", "up", "down", "warn", "tag:ecom"} {
		f, err := ParseFilter(s)
		if err != nil {
			t.Fatalf("ParseFilter(%q) error = %v", s, err)
		}
		if f.String() != s {
			t.Errorf("ParseFilter(%q).String() = %q", s, f.String())
		}
	}
}

func TestVisibleRowsEmptyQueryAllFilterReturnsEverything(t *testing.T) {
	all := sampleRecords()
	got := VisibleRowsAt(all, ParseQuery(""), AllFilter, testNow)

	if !equalStrings(domains(got), domains(all)) {
		t.Errorf("VisibleRows(S, \"\", all) = %v, want %v", domains(got), domains(all))
	}
}

func TestVisibleRowsSearch(t *testing.T) {
	all := sampleRecords()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "domain substring", query: "shop", want: []string{"myshop.example"}},
		{name: "case insensitive", query: "  MYSHOP ", want: []string{"myshop.example"}},
		{name: "registrar", query: "cloudflare", want: []string{"staging.domainmonitor.io"}},
		{name: "tag", query: "ecom", want: []string{"myshop.example"}},
		{name: "shared suffix", query: "domainmonitor", want: []string{"api.domainmonitor.io", "staging.domainmonitor.io"}},
		{name: "no match", query: "nothing-here", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleRowsAt(all, ParseQuery(tt.query), AllFilter, testNow)
			if !equalStrings(domains(got), tt.want) {
				t.Errorf("query %q = %v, want %v", tt.query, domains(got), tt.want)
			}
		})
	}
}

func TestVisibleRowsShopExample(t *testing.T) {
	all := []Record{
		{Domain: "myshop.example", Status: StatusUp},
		{Domain: "example.com", Status: StatusUp},
	}

	got := VisibleRowsAt(all, ParseQuery("shop"), AllFilter, testNow)
	if len(got) != 1 || got[0].Domain != "myshop.example" {
		t.Errorf("query \"shop\" = %v, want [myshop.example]", domains(got))
	}
}

func TestVisibleRowsFilters(t *testing.T) {
	all := sampleRecords()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "up", filter: Filter{Kind: FilterUp}, want: []string{"example.com", "desta-interfaces.net", "api.domainmonitor.io", "staging.domainmonitor.io", "myshop.example"}},
		{name: "down", filter: Filter{Kind: FilterDown}, want: []string{"lab.local", "broken.example.org"}},
		{name: "warn", filter: Filter{Kind: FilterWarn}, want: []string{"desta-interfaces.net", "api.domainmonitor.io", "myshop.example"}},
		{name: "tag prod", filter: TagFilter("prod"), want: []string{"example.com", "desta-interfaces.net", "api.domainmonitor.io", "myshop.example"}},
		{name: "unknown tag", filter: TagFilter("nope"), want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleRowsAt(all, ParseQuery(""), tt.filter, testNow)
			if !equalStrings(domains(got), tt.want) {
				t.Errorf("filter %v = %v, want %v", tt.filter, domains(got), tt.want)
			}
		})
	}
}

func TestWarnFilterMatchesResolvableOffsetsOnly(t *testing.T) {
	warn := Filter{Kind: FilterWarn}
	for _, r := range sampleRecords() {
		d, ok := SSLDayOffset(r.SSLExpiration, testNow)
		want := ok && d <= WarnDays
		if got := warn.Match(r, testNow); got != want {
			t.Errorf("warn.Match(%s) = %v, want %v (offset %d, ok %v)", r.Domain, got, want, d, ok)
		}
	}
}

func TestVisibleRowsIsOrderedSubsequence(t *testing.T) {
	all := sampleRecords()
	filters := []Filter{AllFilter, {Kind: FilterUp}, {Kind: FilterDown}, {Kind: FilterWarn}, TagFilter("prod"), TagFilter("lab"), TagFilter("missing")}
	queries := []string{"", "example", "io", "prod", "zzz", "."}

	for _, f := range filters {
		for _, q := range queries {
			got := VisibleRowsAt(all, ParseQuery(q), f, testNow)
			if got == nil {
				t.Fatalf("VisibleRows(%q, %v) returned nil, want empty slice", q, f)
			}
			if !isSubsequence(got, all) {
				t.Errorf("VisibleRows(%q, %v) = %v is not an ordered subsequence", q, f, domains(got))
			}
		}
	}
}

func TestVisibleRowsDoesNotMutateInput(t *testing.T) {
	all := sampleRecords()
	before := domains(all)

	_ = VisibleRowsAt(all, ParseQuery("prod"), Filter{Kind: FilterWarn}, testNow)

	if !equalStrings(domains(all), before) {
		t.Errorf("input reordered: %v", domains(all))
	}
}

func TestTags(t *testing.T) {
	got := Tags(sampleRecords())
	want := []string{"api", "ecom", "edge", "lab", "prod", "staging"}
	if !equalStrings(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
}
