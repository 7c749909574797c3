package render

import (
	"fmt"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// CheckLine is one entry of the "recent checks" list
type CheckLine struct {
	Text string
	When string
}

// Detail is the drawer view of a single domain
type Detail struct {
	Row     Row
	SSLLine string // "2025-10-20 (in 10 days)"
	Checks  []CheckLine
}

// BuildDetail renders the drawer for r. checkedAt is when the record was
// last loaded; the zero time renders as "never".
func BuildDetail(b *RowBuilder, r domain.Record, checkedAt time.Time) Detail {
	row := b.Row(r)

	sslLine := row.SSL.Label
	if row.SSL.Days != nil {
		sslLine = fmt.Sprintf("%s (in %d days)", r.SSLExpiration, *row.SSL.Days)
	}

	when := Ago(checkedAt, b.now)
	return Detail{
		Row:     row,
		SSLLine: sslLine,
		Checks: []CheckLine{
			{Text: httpCheck(r), When: when},
			{Text: sslCheck(row.SSL), When: when},
			{Text: dnsCheck(r), When: when},
		},
	}
}

func httpCheck(r domain.Record) string {
	if r.Status == domain.StatusUp {
		return "HTTP 200"
	}
	return "HTTP unreachable"
}

func sslCheck(v SSLView) string {
	switch {
	case v.Days == nil:
		return "SSL check failed"
	case *v.Days < 0:
		return "SSL expired"
	case v.Urgency == UrgencyWarning:
		return fmt.Sprintf("SSL expires in %dd", *v.Days)
	default:
		return "SSL valid"
	}
}

func dnsCheck(r domain.Record) string {
	if len(r.DNSRecords) > 0 {
		return "DNS A resolves"
	}
	return "DNS no records"
}

// Ago renders a coarse relative time ("just now", "2m ago", "3h ago").
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}
