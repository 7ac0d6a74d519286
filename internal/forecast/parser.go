package forecast

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"forecastpipe/internal/series"
)

const headerMarker = "item_id"

// timestampPrefix is the YYYY-MM-DD prefix of an export timestamp.
const timestampPrefix = 10

// Parser reads forecast export CSV files into a QuantileSet.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger.With(slog.String("component", "forecast_parser"))}
}

// Parse reads one export file into set and returns the number of data rows.
//
// Header rows are recognised by item_id in the first column. The first
// header fixes the labels of set; later headers may list the same labels in
// any order and their columns are mapped by name. A header with a different
// label set is an error. A later row for the same (date, item) replaces the
// earlier one. A file without data rows is an EmptyExportError.
func (p *Parser) Parse(ctx context.Context, set *QuantileSet, r io.Reader, key string) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := 0
	line := 0
	var columns []int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return rows, fmt.Errorf("%s: failed to read line %d: %w", key, line, err)
		}
		if len(record) == 0 {
			continue
		}

		if strings.TrimPrefix(record[0], "\ufeff") == headerMarker {
			if columns, err = set.columnsFor(record[min(2, len(record)):]); err != nil {
				return rows, fmt.Errorf("%s: line %d: %w", key, line, err)
			}
			continue
		}

		if columns == nil {
			return rows, fmt.Errorf("%s: line %d: data row before header", key, line)
		}
		if len(record) < 2+len(columns) {
			return rows, fmt.Errorf("%s: line %d: expected %d columns, got %d",
				key, line, 2+len(set.Labels), len(record))
		}

		stamp := record[1]
		if len(stamp) > timestampPrefix {
			stamp = stamp[:timestampPrefix]
		}
		day, err := series.ParseDate(stamp)
		if err != nil {
			return rows, fmt.Errorf("%s: line %d: invalid timestamp %q: %w", key, line, record[1], err)
		}

		item := strings.TrimSpace(record[0])
		fields := make(series.Fields, len(set.Labels))
		for i, label := range set.Labels {
			fields[label] = record[columns[i]]
		}
		set.Items.Add(item)
		set.Store.Put(series.FormatDate(day), item, fields)
		rows++
	}

	if rows == 0 {
		return 0, &EmptyExportError{Key: key}
	}

	p.logger.DebugContext(ctx, "Forecast file parsed",
		slog.String("export_key", key),
		slog.Int("row_count", rows),
		slog.Any("quantiles", set.Labels))
	return rows, nil
}
