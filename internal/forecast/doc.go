// Package forecast reads forecast exports back into memory.
//
// An export is one or more CSV files with the header
// item_id,date,<quantile labels...>. Quantile labels are taken from the
// first header seen and reused for every later file of the same export.
package forecast
