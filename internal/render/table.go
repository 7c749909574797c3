package render

import (
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// Summary is computed over the visible rows only
type Summary struct {
	Total        int
	Down         int
	MeanUptime   *float64 // nil when no visible row carries an uptime
	ExpiringSoon int
}

// MeanUptimeLabel renders the mean or the placeholder
func (s Summary) MeanUptimeLabel() string {
	if s.MeanUptime == nil {
		return Placeholder
	}
	return FormatPct(*s.MeanUptime)
}

// Summarize counts the visible rows
func Summarize(rows []domain.Record, now time.Time) Summary {
	s := Summary{Total: len(rows)}

	var sum float64
	n := 0
	for _, r := range rows {
		if r.Status == domain.StatusDown {
			s.Down++
		}
		if domain.ExpiringSoon(r.SSLExpiration, now) {
			s.ExpiringSoon++
		}
		if r.Uptime != nil {
			sum += *r.Uptime
			n++
		}
	}
	if n > 0 {
		mean := sum / float64(n)
		s.MeanUptime = &mean
	}
	return s
}

// Table is a full render of the visible rows. When Error is set the table
// is a single full-width error row and Rows is empty.
type Table struct {
	Rows    []Row
	Summary Summary
	Error   string
}

// HasError reports whether the table is the error row
func (t Table) HasError() bool { return t.Error != "" }

// Empty reports a table with no data rows and no error
func (t Table) Empty() bool { return !t.HasError() && len(t.Rows) == 0 }

// Build renders rows from scratch. Identical input gives an equal table.
func Build(rows []domain.Record, now time.Time) Table {
	return BuildWith(NewRowBuilder(now), rows, now)
}

// BuildWith is Build with a configured RowBuilder
func BuildWith(b *RowBuilder, rows []domain.Record, now time.Time) Table {
	return Table{
		Rows:    b.Rows(rows),
		Summary: Summarize(rows, now),
	}
}

// BuildError renders the full-width error row
func BuildError(message string) Table {
	if message == "" {
		message = "Could not load domain data."
	}
	return Table{
		Rows:    []Row{},
		Summary: Summary{},
		Error:   message,
	}
}
