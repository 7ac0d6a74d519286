package domain

// DailyRow is one item's observation for one calendar day.
// Date is formatted YYYY-MM-DD; values are carried as the raw strings
// read from the feed so re-emission is byte-stable.
type DailyRow struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Item    string `json:"item" validate:"required"`
	Target  string `json:"target"`
	Related string `json:"related"`
}

// DailyRowSet holds one row per item for a single day, in item discovery order.
type DailyRowSet []DailyRow

// SeriesRow is a single line of a target or related time-series file.
type SeriesRow struct {
	Item  string `json:"item_id"`
	Date  string `json:"date"`
	Value string `json:"value"`
}

// Record returns the row as CSV fields: item_id, date, value.
func (r SeriesRow) Record() []string {
	return []string{r.Item, r.Date, r.Value}
}

// TargetRows projects the set onto the target column.
func (s DailyRowSet) TargetRows() []SeriesRow {
	rows := make([]SeriesRow, 0, len(s))
	for _, r := range s {
		rows = append(rows, SeriesRow{Item: r.Item, Date: r.Date, Value: r.Target})
	}
	return rows
}

// RelatedRows projects the set onto the related column.
func (s DailyRowSet) RelatedRows() []SeriesRow {
	rows := make([]SeriesRow, 0, len(s))
	for _, r := range s {
		rows = append(rows, SeriesRow{Item: r.Item, Date: r.Date, Value: r.Related})
	}
	return rows
}
