// Package worktable loads and validates the batch work table: one row per
// sample, pairing a sample id with the two PubChem compound ids to prepare.
package worktable

import "errors"

// Canonical column names. Header matching is case-insensitive; matched
// columns are treated under these names.
const (
	ColumnSample    = "sample"
	ColumnCompoundA = "CID_A"
	ColumnCompoundB = "CID_B"
)

// ErrTable marks unrecoverable work-table problems (unreadable file,
// unrecognized encoding, unresolvable columns). It aborts the whole run,
// unlike per-row validation failures which only skip the row.
var ErrTable = errors.New("work table unusable")

// WorkItem is one validated row of the work table. Identity is SampleID;
// duplicate ids are not rejected here, the last one processed wins on the
// filesystem.
type WorkItem struct {
	SampleID  int64
	CompoundA int64
	CompoundB int64
}
