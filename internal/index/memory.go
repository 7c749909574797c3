package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/domon/internal/domain"
)

// Store holds the monitored domains in backend order.
// It is only ever replaced wholesale; the one in-place mutation is the
// uptime update used by the demo refresh.
type Store struct {
	mu         sync.RWMutex
	records    []domain.Record // backend order
	byDomain   map[string]int  // domain -> position in records
	lastReload time.Time       // Timestamp of last successful Replace
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		records:  []domain.Record{},
		byDomain: make(map[string]int),
	}
}

// Unique drops every record whose domain already appeared earlier and
// returns the survivors in order with the number dropped.
func Unique(records []domain.Record) ([]domain.Record, int) {
	out := make([]domain.Record, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.Domain]; dup {
			continue
		}
		seen[r.Domain] = struct{}{}
		out = append(out, r.Clone())
	}
	return out, len(records) - len(out)
}

// Replace swaps the whole collection atomically.
// Duplicate domains keep their first occurrence; the number of dropped
// entries is returned so the caller can log it.
func (s *Store) Replace(records []domain.Record) int {
	next, dropped := Unique(records)
	pos := make(map[string]int, len(next))
	for i, r := range next {
		pos[r.Domain] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = next
	s.byDomain = pos
	s.lastReload = time.Now()
	return dropped
}

// All returns an ordered copy of every record
func (s *Store) All() []domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Get retrieves a record by domain name
func (s *Store) Get(name string) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byDomain[name]
	if !ok {
		return domain.Record{}, false
	}
	return s.records[i].Clone(), true
}

// Count returns the number of records
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// LastReload returns the time of the last Replace, zero if none happened
func (s *Store) LastReload() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastReload
}

// UpdateUptime applies fn to the uptime of one record and stores the result.
// fn receives nil when the record has no uptime yet. Returns false if the
// domain is unknown.
func (s *Store) UpdateUptime(name string, fn func(cur *float64) float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byDomain[name]
	if !ok {
		return false
	}
	v := fn(s.records[i].Uptime)
	s.records[i].Uptime = &v
	return true
}
