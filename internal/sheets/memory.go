package sheets

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process Backend. Rows keep insertion order and deleted ids
// stay reserved.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*memTable
}

type memTable struct {
	header []string
	order   []string
	rows    map[string]Record
	deleted map[string]bool
}

func NewMemory() *Memory {
	return &Memory{tables: map[string]*memTable{}}
}

func (m *Memory) EnsureTable(_ context.Context, table string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[table]; ok {
		if !slices.Equal(t.header, header) {
			return fmt.Errorf("%s: header mismatch: have %v, want %v", table, t.header, header)
		}
		return nil
	}
	m.tables[table] = &memTable{
		header:  slices.Clone(header),
		rows:    map[string]Record{},
		deleted: map[string]bool{},
	}
	return nil
}

func (m *Memory) ReadRows(_ context.Context, table string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, cloneRecord(t.rows[id]))
	}
	return out, nil
}

func (m *Memory) ReadRow(_ context.Context, table, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, err := m.table(table)
	if err != nil {
		return Record{}, err
	}
	rec, ok := t.rows[id]
	if !ok {
		return Record{}, &NotFoundError{Table: table, ID: id}
	}
	return cloneRecord(rec), nil
}

func (m *Memory) InsertRow(_ context.Context, table string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	if _, ok := t.rows[rec.ID]; ok || t.deleted[rec.ID] {
		return &ExistsError{Table: table, ID: rec.ID}
	}
	t.rows[rec.ID] = cloneRecord(rec)
	t.order = append(t.order, rec.ID)
	return nil
}

func (m *Memory) WriteRow(_ context.Context, table string, rec Record, expected string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	cur, ok := t.rows[rec.ID]
	if !ok {
		return &NotFoundError{Table: table, ID: rec.ID}
	}
	if cur.Version != expected {
		return &ConflictError{Table: table, ID: rec.ID, Expected: expected, Actual: cur.Version}
	}
	t.rows[rec.ID] = cloneRecord(rec)
	return nil
}

func (m *Memory) DeleteRow(_ context.Context, table, id, expected string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.table(table)
	if err != nil {
		return err
	}
	cur, ok := t.rows[id]
	if !ok {
		return &NotFoundError{Table: table, ID: id}
	}
	if cur.Version != expected {
		return &ConflictError{Table: table, ID: id, Expected: expected, Actual: cur.Version}
	}
	delete(t.rows, id)
	t.deleted[id] = true
	t.order = slices.DeleteFunc(t.order, func(s string) bool { return s == id })
	return nil
}

func (m *Memory) table(name string) (*memTable, error) {
	t, ok := m.tables[name]
	if !ok {
		return nil, fmt.Errorf("%s: table not initialized", name)
	}
	return t, nil
}

func cloneRecord(r Record) Record {
	r.Cells = slices.Clone(r.Cells)
	return r
}
