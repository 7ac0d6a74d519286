package series

import (
	"fmt"
	"time"
)

// Date layouts.
const (
	DateLayout    = "2006-01-02"
	CompactLayout = "20060102"
)

// DateRange is the inclusive span of dates observed in one feed.
type DateRange struct {
	Start time.Time
	End   time.Time
	set   bool
}

// Extend widens the range to include day.
func (r *DateRange) Extend(day time.Time) {
	day = Truncate(day)
	if !r.set {
		r.Start, r.End, r.set = day, day, true
		return
	}
	if day.Before(r.Start) {
		r.Start = day
	}
	if day.After(r.End) {
		r.End = day
	}
}

// IsEmpty reports whether no date was ever added.
func (r DateRange) IsEmpty() bool {
	return !r.set
}

// NewDateRange builds a range from explicit bounds.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Truncate(start), End: Truncate(end), set: true}
}

// Days returns every day from Start to End inclusive.
func (r DateRange) Days() []time.Time {
	if !r.set || r.End.Before(r.Start) {
		return nil
	}
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether day lies inside the range.
func (r DateRange) Contains(day time.Time) bool {
	day = Truncate(day)
	return r.set && !day.Before(r.Start) && !day.After(r.End)
}

func (r DateRange) String() string {
	if !r.set {
		return "[]"
	}
	return fmt.Sprintf("[%s, %s]", FormatDate(r.Start), FormatDate(r.End))
}

// Truncate drops the clock part of t and moves it to UTC midnight.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CompactDate renders t as YYYYMMDD.
func CompactDate(t time.Time) string {
	return t.Format(CompactLayout)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// ParseCompactDate parses the 8-digit YYYYMMDD token used by raw feeds.
func ParseCompactDate(s string) (time.Time, error) {
	if len(s) != len(CompactLayout) {
		return time.Time{}, fmt.Errorf("date token %q is not 8 digits", s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("date token %q is not 8 digits", s)
		}
	}
	return time.ParseInLocation(CompactLayout, s, time.UTC)
}
