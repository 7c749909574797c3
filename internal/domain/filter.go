package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FilterKind enumerates the filter chips of the dashboard.
type FilterKind string

const (
	FilterAll  FilterKind = "all"
	FilterUp   FilterKind = "up"
	FilterDown FilterKind = "down"
	FilterWarn FilterKind = "warn"
	FilterTag  FilterKind = "tag"
)

const tagFilterPrefix = "tag:"

// Filter is the active filter. Tag is only set for FilterTag.
type Filter struct {
	Kind FilterKind
	Tag  string
}

// AllFilter matches every record.
var AllFilter = Filter{Kind: FilterAll}

// TagFilter builds a tag:<label> filter.
func TagFilter(label string) Filter {
	return Filter{Kind: FilterTag, Tag: label}
}

// ParseFilter parses "all", "up", "down", "warn" or "tag:<label>".
// The empty string means "all".
func ParseFilter(s string) (Filter, error) {
	s = strings.TrimSpace(s)
	switch FilterKind(s) {
	case "", FilterAll:
		return AllFilter, nil
	case FilterUp, FilterDown, FilterWarn:
		return Filter{Kind: FilterKind(s)}, nil
	}

	if strings.HasPrefix(s, tagFilterPrefix) {
		label := strings.TrimSpace(s[len(tagFilterPrefix):])
		if label == "" {
			return Filter{}, fmt.Errorf("tag filter needs a label: %q", s)
		}
		return TagFilter(label), nil
	}

	return Filter{}, fmt.Errorf("unknown filter %q", s)
}

// String renders the filter back into its chip value.
func (f Filter) String() string {
	if f.Kind == FilterTag {
		return tagFilterPrefix + f.Tag
	}
	if f.Kind == "" {
		return string(FilterAll)
	}
	return string(f.Kind)
}

// Match reports whether r passes the filter at instant now.
func (f Filter) Match(r Record, now time.Time) bool {
	switch f.Kind {
	case "", FilterAll:
		return true
	case FilterUp:
		return r.Status == StatusUp
	case FilterDown:
		return r.Status == StatusDown
	case FilterWarn:
		return ExpiringSoon(r.SSLExpiration, now)
	case FilterTag:
		return r.HasTag(f.Tag)
	default:
		return false
	}
}

// Query is a normalized search query.
type Query struct {
	Raw    string // original input
	Needle string // trimmed, lowercased
}

// ParseQuery normalizes user input. An empty needle matches everything.
func ParseQuery(input string) Query {
	return Query{
		Raw:    input,
		Needle: strings.ToLower(strings.TrimSpace(input)),
	}
}

// Match reports whether the query is a substring of the record's search text.
func (q Query) Match(r Record) bool {
	if q.Needle == "" {
		return true
	}
	return strings.Contains(SearchText(r), q.Needle)
}

// SearchText is the lowercased composite a query is matched against:
// domain, registrar and tags joined by spaces.
func SearchText(r Record) string {
	var b strings.Builder
	b.WriteString(r.Domain)
	b.WriteByte(' ')
	b.WriteString(r.Registrar)
	b.WriteByte(' ')
	b.WriteString(strings.Join(r.Tags, " "))
	return strings.ToLower(b.String())
}

// VisibleRows filters all by query and filter at the current time.
func VisibleRows(all []Record, query string, f Filter) []Record {
	return VisibleRowsAt(all, ParseQuery(query), f, time.Now())
}

// VisibleRowsAt is VisibleRows with an explicit clock. The result is an
// ordered subsequence of all (stable, never resorted) and is never nil.
func VisibleRowsAt(all []Record, q Query, f Filter, now time.Time) []Record {
	rows := make([]Record, 0, len(all))
	for _, r := range all {
		if q.Match(r) && f.Match(r, now) {
			rows = append(rows, r)
		}
	}
	return rows
}

// Tags returns every tag used in records, sorted, for the dynamic tag chips.
func Tags(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for _, t := range r.Tags {
			seen[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}
