// Package render turns visible domain records into a typed table model and
// projects it as HTML or as a text table.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// Placeholder is shown for absent values
const Placeholder = "—"

const checkFailedLabel = "Check Failed"

// Urgency classifies an SSL expiration
type Urgency string

const (
	UrgencyNominal Urgency = "nominal" // more than WarnDays left
	UrgencyWarning Urgency = "warning" // WarnDays or fewer left, including expired
	UrgencyUnknown Urgency = "unknown" // no parseable date
)

// Class is the CSS status class of the urgency
func (u Urgency) Class() string {
	switch u {
	case UrgencyNominal:
		return "up"
	case UrgencyWarning:
		return "warn"
	default:
		return "down"
	}
}

// SSLView is the rendered SSL cell
type SSLView struct {
	Days    *int
	Urgency Urgency
	Label   string
}

// ClassifySSL resolves an expiration against now.
//
//	"2025-10-20" at 2025-10-10 -> {10, warning, "2025-10-20 (10d)"}
//	"N/A"                      -> {nil, unknown, "N/A"}
func ClassifySSL(ssl string, now time.Time) SSLView {
	d, ok := domain.SSLDayOffset(ssl, now)
	if !ok {
		label := ssl
		if label == "" {
			label = Placeholder
		}
		return SSLView{Urgency: UrgencyUnknown, Label: label}
	}

	u := UrgencyNominal
	if d <= domain.WarnDays {
		u = UrgencyWarning
	}
	return SSLView{
		Days:    &d,
		Urgency: u,
		Label:   fmt.Sprintf("%s (%dd)", ssl, d),
	}
}

// Badge is the rendered status pill
type Badge struct {
	Class string
	Color string
	Label string
}

// StatusBadge is pure: the same status always yields the same badge.
func StatusBadge(s domain.Status) Badge {
	if s == domain.StatusUp {
		return Badge{Class: "up", Color: "#6ee7b7", Label: "UP"}
	}
	return Badge{Class: "down", Color: "#fca5a5", Label: "DOWN"}
}

// IssuerDisplay shows "Check Failed" when the issuer is the error token and
// the certificate could not be read either.
func IssuerDisplay(issuer string, u Urgency) string {
	switch {
	case issuer == domain.UnavailableToken && u == UrgencyUnknown:
		return checkFailedLabel
	case issuer == "":
		return Placeholder
	default:
		return issuer
	}
}

// FormatPct renders a percentage with two decimals
func FormatPct(v float64) string {
	return fmt.Sprintf("%.2f", math.Round(v*100)/100)
}

// Row is one rendered table line
type Row struct {
	Domain    string
	Status    Badge
	Issuer    string
	SSL       SSLView
	Uptime    string // "99.98" or Placeholder
	Tags      []string
	DNS       string
	Registrar string
	Removable bool
	Simulated bool // uptime is demo data and can be refreshed
}

// RowBuilder assembles rows for one render pass
type RowBuilder struct {
	now       time.Time
	removable bool
	simulated bool
}

// NewRowBuilder starts a builder evaluating dates at now
func NewRowBuilder(now time.Time) *RowBuilder {
	return &RowBuilder{now: now, removable: true}
}

// Removable toggles the remove action (off for read-only sources)
func (b *RowBuilder) Removable(on bool) *RowBuilder {
	b.removable = on
	return b
}

// Simulated marks uptime as refreshable demo data
func (b *RowBuilder) Simulated(on bool) *RowBuilder {
	b.simulated = on
	return b
}

// Row builds the row for one record
func (b *RowBuilder) Row(r domain.Record) Row {
	ssl := ClassifySSL(r.SSLExpiration, b.now)

	uptime := Placeholder
	if r.Uptime != nil {
		uptime = FormatPct(*r.Uptime)
	}

	dns := Placeholder
	if len(r.DNSRecords) > 0 {
		dns = strings.Join(r.DNSRecords, ", ")
	}

	registrar := r.Registrar
	if registrar == "" {
		registrar = Placeholder
	}

	return Row{
		Domain:    r.Domain,
		Status:    StatusBadge(r.Status),
		Issuer:    IssuerDisplay(r.SSLIssuer, ssl.Urgency),
		SSL:       ssl,
		Uptime:    uptime,
		Tags:      append([]string(nil), r.Tags...),
		DNS:       dns,
		Registrar: registrar,
		Removable: b.removable,
		Simulated: b.simulated,
	}
}

// Rows builds every row in input order
func (b *RowBuilder) Rows(records []domain.Record) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = b.Row(r)
	}
	return rows
}
