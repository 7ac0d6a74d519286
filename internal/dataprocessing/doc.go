// Package dataprocessing turns a wide-format daily snapshot feed into the
// target and related time series consumed by the forecasting service.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Transformer: reads a CSV or XLSX feed into a Snapshot (store, item universe, date range)
// 2. Snapshot: emits one DailyRowSet per day, zero-filling anything the feed did not carry
// 3. Assembler: concatenates the daily sets into full history, appends the related-only
// forecast horizon and derives the RunConfig
//
// # Usage
//
//	t := dataprocessing.NewTransformer(dataprocessing.DefaultColumnLayout(), logger)
//	snap, err := t.Parse(ctx, feed, dataprocessing.FeedFormatCSV)
//	if err != nil {
//	    return err
//	}
//	days := snap.EmitAll()
//	artifacts, err := dataprocessing.NewAssembler(logger).Assemble(days, snap, template)
//
// # Data Flow
//
//	Feed → Transformer → Snapshot → DailyRowSets → Assembler → HistoryArtifacts
//
// # Error Handling
//
// Parsing is fail-fast: a single malformed row aborts the pass with a
// *MalformedRowError. An empty feed yields *NoDataError and a non-positive
// horizon yields *InvalidHorizonError. All three match their Err* sentinels
// with errors.Is.
package dataprocessing
