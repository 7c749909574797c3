package domain

import (
	"math"
	"regexp"
	"time"
)

const (
	// WarnDays is the inclusive day-offset at or below which a certificate
	// counts as expiring soon.
	WarnDays = 14

	// UnavailableToken is what the backend sends when it could not read a
	// certificate field.
	UnavailableToken = "N/A"

	sslDateLayout = "2006-01-02"
)

var sslDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SSLDayOffset returns the whole days between now and the expiration date,
// floored. The date is taken at 00:00 UTC. ok is false when ssl is empty,
// an error token, or not a real calendar date.
//
// Example: "2025-10-20" against 2025-10-10T00:00Z -> 10, true
func SSLDayOffset(ssl string, now time.Time) (days int, ok bool) {
	if !sslDatePattern.MatchString(ssl) {
		return 0, false
	}
	exp, err := time.Parse(sslDateLayout, ssl)
	if err != nil {
		return 0, false
	}
	d := exp.Sub(now).Hours() / 24
	return int(math.Floor(d)), true
}

// ExpiringSoon reports whether the certificate resolves to a day-offset
// of WarnDays or less. Unresolvable dates never expire soon.
func ExpiringSoon(ssl string, now time.Time) bool {
	d, ok := SSLDayOffset(ssl, now)
	return ok && d <= WarnDays
}
