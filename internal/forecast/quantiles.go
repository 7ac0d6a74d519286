package forecast

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"forecastpipe/internal/series"
)

// QuantileSet holds predicted values by date, item and quantile label.
type QuantileSet struct {
	Store  *series.Store
	Items  *series.ItemUniverse
	Labels []string
}

// NewQuantileSet creates an empty set.
func NewQuantileSet() *QuantileSet {
	return &QuantileSet{
		Store: series.NewStore(),
		Items: series.NewItemUniverse(),
	}
}

// Value returns the prediction for (date, item, label). ok is false when the
// set has no row at all for that item on that date.
func (q *QuantileSet) Value(date, item, label string) (v float64, ok bool, err error) {
	if !q.Store.Has(date, item) {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(q.Store.Lookup(date, item, label), 64)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}

// columnsFor maps header labels onto the record column of each of q.Labels.
// The first header seen sets q.Labels.
func (q *QuantileSet) columnsFor(header []string) ([]int, error) {
	labels := make([]string, len(header))
	for i, label := range header {
		labels[i] = strings.TrimSpace(label)
	}
	if len(q.Labels) == 0 {
		if len(labels) == 0 {
			return nil, fmt.Errorf("header has no quantile columns")
		}
		q.Labels = labels
	}
	if len(labels) != len(q.Labels) {
		return nil, fmt.Errorf("quantile labels %v do not match %v", labels, q.Labels)
	}

	columns := make([]int, len(q.Labels))
	for i, label := range q.Labels {
		pos := slices.Index(labels, label)
		if pos < 0 {
			return nil, fmt.Errorf("quantile labels %v do not match %v", labels, q.Labels)
		}
		columns[i] = 2 + pos
	}
	return columns, nil
}
