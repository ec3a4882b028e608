package sheets

import (
	"maps"
	"time"
)

const (
	// Unset marks a cell that was intentionally left blank. It is distinct
	// from the empty string.
	Unset = "\x00"

	ColumnID      = "_id"
	ColumnUpdated = "_updated"

	ListDelimiter = ","
	DateLayout    = time.RFC3339
)

// Identifiable rows expose their key within a table.
type Identifiable interface {
	RowID() string
}

// Versioned rows carry the token read from the store.
type Versioned interface {
	RowVersion() string
}

// Row is what a Table stores. Record types get it by embedding RowMeta.
type Row interface {
	Identifiable
	Versioned
	Meta() *RowMeta
}

// Preparer is implemented by rows that default fields on create.
type Preparer interface {
	Prepare(now time.Time)
}

// RowMeta holds identity, version and any cells that failed to decode.
type RowMeta struct {
	ID      string
	Version string

	unparsed map[string]string
}

func (m *RowMeta) RowID() string      { return m.ID }
func (m *RowMeta) RowVersion() string { return m.Version }
func (m *RowMeta) Meta() *RowMeta     { return m }

// Unparsed returns the raw cells kept for columns that failed to decode.
func (m *RowMeta) Unparsed() map[string]string {
	return maps.Clone(m.unparsed)
}

// ClearUnparsed drops the raw value of column so the typed field is written
// on the next update.
func (m *RowMeta) ClearUnparsed(column string) {
	delete(m.unparsed, column)
}

func (m *RowMeta) keepRaw(column, raw string) {
	if m.unparsed == nil {
		m.unparsed = map[string]string{}
	}
	m.unparsed[column] = raw
}

func (m *RowMeta) raw(column string) (string, bool) {
	v, ok := m.unparsed[column]
	return v, ok
}
