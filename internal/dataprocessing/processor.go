package dataprocessing

import (
	"time"

	"forecastpipe/internal/series"
	"forecastpipe/pkg/contracts/domain"
)

// Snapshot is the parsed form of one feed: the observation store, the items
// in first-seen order and the observed date range.
type Snapshot struct {
	Store *series.Store
	Items *series.ItemUniverse
	Range series.DateRange
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Store: series.NewStore(),
		Items: series.NewItemUniverse(),
	}
}

// EmitDay builds the row set for day: one row per item, in universe order.
// Values the feed did not provide for that day are backfilled with zero.
func (s *Snapshot) EmitDay(day time.Time) domain.DailyRowSet {
	date := series.FormatDate(day)
	items := s.Items.Items()
	set := make(domain.DailyRowSet, 0, len(items))
	for _, item := range items {
		set = append(set, domain.DailyRow{
			Date:    date,
			Item:    item,
			Target:  s.Store.Lookup(date, item, series.FieldTarget),
			Related: s.Store.Lookup(date, item, series.FieldRelated),
		})
	}
	return set
}

// EmitAll emits every day of the observed range in chronological order.
func (s *Snapshot) EmitAll() []domain.DailyRowSet {
	days := s.Range.Days()
	sets := make([]domain.DailyRowSet, 0, len(days))
	for _, day := range days {
		sets = append(sets, s.EmitDay(day))
	}
	return sets
}
