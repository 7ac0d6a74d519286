package dataprocessing

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"forecastpipe/internal/series"
)

// FeedFormat identifies how a raw snapshot feed is encoded.
type FeedFormat string

const (
	FeedFormatCSV  FeedFormat = "csv"
	FeedFormatXLSX FeedFormat = "xlsx"
)

// DetectFeedFormat picks the format from an object key or file name.
func DetectFeedFormat(name string) FeedFormat {
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		return FeedFormatXLSX
	}
	return FeedFormatCSV
}

// ColumnLayout gives the zero-based column offsets of the fields the
// transformer reads. Other columns are ignored.
type ColumnLayout struct {
	Date    int
	Item    int
	Target  int
	Related int
}

// DefaultColumnLayout matches the states daily feed: date, state, positive
// cases, and total test results at column 17.
func DefaultColumnLayout() ColumnLayout {
	return ColumnLayout{Date: 0, Item: 1, Target: 2, Related: 17}
}

func (l ColumnLayout) width() int {
	return max(l.Date, l.Item, l.Target, l.Related) + 1
}

// Validate rejects negative offsets.
func (l ColumnLayout) Validate() error {
	if l.Date < 0 || l.Item < 0 || l.Target < 0 || l.Related < 0 {
		return fmt.Errorf("column offsets must be non-negative: %+v", l)
	}
	return nil
}

// Transformer parses raw snapshot feeds.
type Transformer struct {
	layout ColumnLayout
	logger *slog.Logger
}

// NewTransformer creates a transformer for the given column layout.
func NewTransformer(layout ColumnLayout, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		layout: layout,
		logger: logger.With(slog.String("component", "transformer")),
	}
}

// rowSource yields rows until io.EOF.
type rowSource func() ([]string, error)

// Parse reads the whole feed into a fresh Snapshot. The first row is a header
// and is discarded. Rows are applied in file order and a later row for the
// same date and item replaces the earlier one.
func (t *Transformer) Parse(ctx context.Context, r io.Reader, format FeedFormat) (*Snapshot, error) {
	var next rowSource
	switch format {
	case FeedFormatXLSX:
		rows, err := readWorkbook(r)
		if err != nil {
			return nil, err
		}
		next = sliceSource(padRows(rows, t.layout.width()))
	case FeedFormatCSV, "":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		next = reader.Read
	default:
		return nil, fmt.Errorf("unsupported feed format %q", format)
	}

	snap, err := t.parseRows(next)
	if err != nil {
		return nil, err
	}

	t.logger.InfoContext(ctx, "feed parsed",
		slog.String("format", string(format)),
		slog.Int("item_count", snap.Items.Len()),
		slog.Int("cell_count", snap.Store.Len()),
		slog.String("date_range", snap.Range.String()))

	return snap, nil
}

// ParseBytes is Parse over an in-memory feed.
func (t *Transformer) ParseBytes(ctx context.Context, data []byte, format FeedFormat) (*Snapshot, error) {
	return t.Parse(ctx, bytes.NewReader(data), format)
}

func (t *Transformer) parseRows(next rowSource) (*Snapshot, error) {
	if err := t.layout.Validate(); err != nil {
		return nil, err
	}

	snap := newSnapshot()
	if _, err := next(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &NoDataError{}
		}
		return nil, &MalformedRowError{Line: 1, Reason: "unreadable header", Err: err}
	}

	width := t.layout.width()
	for line := 2; ; line++ {
		row, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedRowError{Line: line, Reason: "unreadable row", Err: err}
		}
		if len(row) < width {
			return nil, &MalformedRowError{
				Line:   line,
				Reason: fmt.Sprintf("row has %d columns, need at least %d", len(row), width),
			}
		}

		token := strings.TrimSpace(row[t.layout.Date])
		day, err := series.ParseCompactDate(token)
		if err != nil {
			return nil, &MalformedRowError{
				Line:   line,
				Column: t.layout.Date,
				Value:  token,
				Reason: "bad date token",
				Err:    err,
			}
		}

		item := strings.TrimSpace(row[t.layout.Item])
		if item == "" {
			return nil, &MalformedRowError{Line: line, Column: t.layout.Item, Reason: "empty item identifier"}
		}

		snap.Items.Add(item)
		snap.Store.Put(series.FormatDate(day), item, series.Fields{
			series.FieldTarget:  row[t.layout.Target],
			series.FieldRelated: row[t.layout.Related],
		})
		snap.Range.Extend(day)
	}

	if snap.Range.IsEmpty() {
		return nil, &NoDataError{}
	}
	return snap, nil
}

func sliceSource(rows [][]string) rowSource {
	i := 0
	return func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	}
}

// padRows drops blank rows and right-pads the rest. Spreadsheet readers trim
// trailing empty cells, which would otherwise look like short rows.
func padRows(rows [][]string, width int) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		out = append(out, row)
	}
	return out
}

// readWorkbook returns the rows of the first sheet of an XLSX workbook.
func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &NoDataError{Source: "workbook"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}
