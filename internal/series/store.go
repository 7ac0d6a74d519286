package series

import (
	"sort"
	"strconv"
	"strings"
)

// Field names for raw observations.
const (
	FieldTarget  = "targetValue"
	FieldRelated = "relatedValue1"
)

// ZeroValue is what Lookup yields for any absent value.
const ZeroValue = "0"

// Fields maps field name to raw value for one date and item.
type Fields map[string]string

// Store is a sparse date -> item -> field matrix. Dates are YYYY-MM-DD and
// item keys are case-insensitive.
type Store struct {
	days map[string]map[string]Fields
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{days: make(map[string]map[string]Fields)}
}

func itemKey(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}

// Put replaces every field of (date, item). The last write wins.
func (s *Store) Put(date, item string, fields Fields) {
	items, ok := s.days[date]
	if !ok {
		items = make(map[string]Fields)
		s.days[date] = items
	}
	cp := make(Fields, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	items[itemKey(item)] = cp
}

// Has reports whether anything was recorded for (date, item).
func (s *Store) Has(date, item string) bool {
	_, ok := s.days[date][itemKey(item)]
	return ok
}

// Lookup returns the raw value of field for (date, item).
//
// A missing date, a missing item, a missing field and an empty value all
// collapse to ZeroValue. There is no carry-forward from earlier days: a day
// without data and a day whose value was zero are indistinguishable here.
func (s *Store) Lookup(date, item, field string) string {
	v := strings.TrimSpace(s.days[date][itemKey(item)][field])
	if v == "" {
		return ZeroValue
	}
	return v
}

// LookupFloat is Lookup parsed as a float. Absent values yield 0.
func (s *Store) LookupFloat(date, item, field string) (float64, error) {
	return strconv.ParseFloat(s.Lookup(date, item, field), 64)
}

// Dates returns the recorded dates in ascending order.
func (s *Store) Dates() []string {
	dates := make([]string, 0, len(s.days))
	for d := range s.days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Len returns the number of (date, item) cells.
func (s *Store) Len() int {
	n := 0
	for _, items := range s.days {
		n += len(items)
	}
	return n
}
