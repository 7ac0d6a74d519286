package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Realized maps items to the value actually observed on one day.
// Items are matched case-insensitively.
type Realized struct {
	values map[string]string
}

// NewRealized builds a Realized from item/value pairs.
func NewRealized(values map[string]string) Realized {
	r := Realized{values: make(map[string]string, len(values))}
	for item, v := range values {
		r.values[strings.ToLower(strings.TrimSpace(item))] = v
	}
	return r
}

// ParseRealized reads a headerless item_id,date,value file as written by
// the daily exporter.
func ParseRealized(r io.Reader) (Realized, error) {
	out := Realized{values: make(map[string]string)}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return out, fmt.Errorf("failed to read realized line %d: %w", line, err)
		}
		if len(record) < 3 {
			return out, fmt.Errorf("realized line %d: expected 3 columns, got %d", line, len(record))
		}
		out.values[strings.ToLower(strings.TrimSpace(record[0]))] = strings.TrimSpace(record[2])
	}
	return out, nil
}

// Get returns the raw realized value for item.
func (r Realized) Get(item string) (string, bool) {
	v, ok := r.values[strings.ToLower(strings.TrimSpace(item))]
	return v, ok
}

// Items returns the normalized item ids in sorted order.
func (r Realized) Items() []string {
	items := make([]string, 0, len(r.values))
	for item := range r.values {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// Len returns the number of items with a realized value.
func (r Realized) Len() int {
	return len(r.values)
}
