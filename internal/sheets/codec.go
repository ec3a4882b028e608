package sheets

import (
	"log/slog"
)

// Codec converts between backend records and typed rows of one table.
// Columns are kept in the order they were declared, which must match the
// order of the columns in the sheet.
type Codec[T Row] struct {
	table   string
	newRow  func() T
	columns []Column[T]
	logger  *slog.Logger
}

func NewCodec[T Row](table string, newRow func() T, columns ...Column[T]) *Codec[T] {
	return &Codec[T]{
		table:   table,
		newRow:  newRow,
		columns: columns,
		logger:  slog.Default(),
	}
}

// WithLogger returns a copy of the codec that logs through l.
func (c *Codec[T]) WithLogger(l *slog.Logger) *Codec[T] {
	cc := *c
	cc.logger = l
	return &cc
}

func (c *Codec[T]) Table() string { return c.table }

// Header returns the domain column names in persisted order.
func (c *Codec[T]) Header() []string {
	h := make([]string, len(c.columns))
	for i, col := range c.columns {
		h[i] = col.Name
	}
	return h
}

// Decode builds a typed row from rec. A cell that fails to parse keeps its
// raw value on the row and is reported in the returned slice; the rest of the
// row is still decoded.
func (c *Codec[T]) Decode(rec Record) (T, []*ParseError) {
	row := c.newRow()
	meta := row.Meta()
	meta.ID = rec.ID
	meta.Version = rec.Version

	var errs []*ParseError
	for i, col := range c.columns {
		raw := cell(rec.Cells, i)
		if err := col.Decode(row, raw); err != nil {
			pe := &ParseError{Table: c.table, Column: col.Name, Raw: raw, Err: err}
			c.logger.Warn("cell decode failed",
				"table", c.table,
				"id", rec.ID,
				"column", col.Name,
				"raw", raw,
				"error", err,
			)
			meta.keepRaw(col.Name, raw)
			errs = append(errs, pe)
		}
	}
	return row, errs
}

// Encode is the inverse of Decode. Cells kept raw by Decode are written back
// unchanged.
func (c *Codec[T]) Encode(row T) Record {
	meta := row.Meta()
	cells := make([]string, len(c.columns))
	for i, col := range c.columns {
		if raw, ok := meta.raw(col.Name); ok {
			cells[i] = raw
			continue
		}
		cells[i] = col.Encode(row)
	}
	return Record{ID: meta.ID, Version: meta.Version, Cells: cells}
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
