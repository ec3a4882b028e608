package sheets

import "context"

// Record is one stored row as the backend sees it: identity, version token
// and the domain cells in column order.
type Record struct {
	ID      string
	Version string
	Cells   []string
}

// Backend is the tabular store the tables are persisted to. Each table is a
// tab whose first two columns are _id and _updated.
//
// Ids are never reused: InsertRow refuses an id that is present or was ever
// deleted with *ExistsError.
//
// WriteRow and DeleteRow take the version the caller last read; backends that
// can check it atomically do so and return *ConflictError on mismatch.
type Backend interface {
	EnsureTable(ctx context.Context, table string, header []string) error
	ReadRows(ctx context.Context, table string) ([]Record, error)
	ReadRow(ctx context.Context, table, id string) (Record, error)
	InsertRow(ctx context.Context, table string, rec Record) error
	WriteRow(ctx context.Context, table string, rec Record, expected string) error
	DeleteRow(ctx context.Context, table, id, expected string) error
}

// TombstoneTable is the tab where backends without other bookkeeping record
// deleted ids.
const TombstoneTable = "_deleted"

var tombstoneHeader = []string{"table", "id"}

// FullHeader prefixes the identity and version columns to a domain header.
func FullHeader(header []string) []string {
	return append([]string{ColumnID, ColumnUpdated}, header...)
}
