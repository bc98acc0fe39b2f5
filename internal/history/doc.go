// Package history records batch runs and their per-sample outcomes in a
// SQLite database under the log directory. The ledger exists for auditing
// and the history command; resume decisions come from the sample directory
// completion probe, never from this database.
package history
