// Package series holds the in-memory date x item x field matrix shared by the
// raw-data transform and the forecast evaluation, together with the ordered
// item universe and the observed date range.
//
// A Store is built by a single linear scan of one input artifact and is
// read-only afterwards. It is never shared between runs.
package series
