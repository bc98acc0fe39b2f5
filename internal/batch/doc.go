// Package batch orchestrates a full preparation run: it loads the work
// table, skips samples whose output already exists, dispatches the rest
// through the pipeline one at a time, and finishes by recording history
// and writing the text report.
package batch
