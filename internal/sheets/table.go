package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Observer is told about every table operation once it completes.
type Observer interface {
	ObserveOp(table, op string, elapsed time.Duration, err error)
}

type Option func(*options)

type options struct {
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	observer Observer
}

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithIDGenerator(f func() string) Option { return func(o *options) { o.newID = f } }

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func WithObserver(obs Observer) Option { return func(o *options) { o.observer = obs } }

// Table is versioned CRUD over the rows of one tab.
//
// Writes are checked against the version the caller read: the table re-reads
// the stored row and refuses the write with *ConflictError when they differ.
// Conflicts are never merged or retried.
type Table[T Row] struct {
	name    string
	codec   *Codec[T]
	backend Backend
	opts    options

	// mu serializes read-compare-write within this process.
	mu sync.Mutex
}

func NewTable[T Row](backend Backend, codec *Codec[T], opts ...Option) *Table[T] {
	o := options{
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With("table", codec.Table())
	return &Table[T]{
		name:    codec.Table(),
		codec:   codec.WithLogger(o.logger),
		backend: backend,
		opts:    o,
	}
}

func (t *Table[T]) Name() string { return t.name }

// Header returns the full persisted header including _id and _updated.
func (t *Table[T]) Header() []string { return FullHeader(t.codec.Header()) }

// Init creates the tab if needed and checks its header.
func (t *Table[T]) Init(ctx context.Context) error {
	if err := t.backend.EnsureTable(ctx, t.name, t.Header()); err != nil {
		return fmt.Errorf("init %s: %w", t.name, err)
	}
	return nil
}

// Create stores a new row. An empty id is filled with a fresh UUID; an id
// that is present or was ever deleted is refused, never overwritten.
func (t *Table[T]) Create(ctx context.Context, row T) (_ T, err error) {
	defer t.observe("create", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.opts.now()
	meta := row.Meta()
	if meta.ID == "" {
		meta.ID = t.opts.newID()
	}
	if p, ok := any(row).(Preparer); ok {
		// date columns hold whole seconds
		p.Prepare(now.Truncate(time.Second))
	}
	version := nextVersion("", now)

	rec := t.codec.Encode(row)
	rec.Version = version
	if err := t.backend.InsertRow(ctx, t.name, rec); err != nil {
		var zero T
		return zero, fmt.Errorf("create %s: %w", t.name, err)
	}
	meta.Version = version
	return row, nil
}

func (t *Table[T]) Get(ctx context.Context, id string) (_ T, err error) {
	defer t.observe("get", time.Now(), &err)

	rec, err := t.backend.ReadRow(ctx, t.name, id)
	if err != nil {
		var zero T
		return zero, err
	}
	row, _ := t.codec.Decode(rec)
	return row, nil
}

// Update replaces the stored row with row. row must carry the version it was
// read with; on success its version is advanced in place.
func (t *Table[T]) Update(ctx context.Context, row T) (_ T, err error) {
	defer t.observe("update", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	meta := row.Meta()
	cur, err := t.current(ctx, meta)
	if err != nil {
		var zero T
		return zero, err
	}

	rec := t.codec.Encode(row)
	rec.Version = nextVersion(cur.Version, t.opts.now())
	if err := t.backend.WriteRow(ctx, t.name, rec, cur.Version); err != nil {
		var zero T
		return zero, err
	}
	meta.Version = rec.Version
	return row, nil
}

// Delete removes row under the same version precondition as Update.
func (t *Table[T]) Delete(ctx context.Context, row T) (err error) {
	defer t.observe("delete", time.Now(), &err)

	t.mu.Lock()
	defer t.mu.Unlock()

	meta := row.Meta()
	cur, err := t.current(ctx, meta)
	if err != nil {
		return err
	}
	return t.backend.DeleteRow(ctx, t.name, meta.ID, cur.Version)
}

// List returns a snapshot of every row. Later writes are not reflected in
// an already returned slice.
func (t *Table[T]) List(ctx context.Context) (_ []T, err error) {
	defer t.observe("list", time.Now(), &err)

	recs, err := t.backend.ReadRows(ctx, t.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	rows := make([]T, 0, len(recs))
	for _, rec := range recs {
		row, _ := t.codec.Decode(rec)
		rows = append(rows, row)
	}
	return rows, nil
}

func (t *Table[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	rows, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Find returns the first row matching keep, or nil-equivalent and false.
func (t *Table[T]) Find(ctx context.Context, keep func(T) bool) (T, bool, error) {
	var zero T
	rows, err := t.Filter(ctx, keep)
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return rows[0], true, nil
}

func (t *Table[T]) current(ctx context.Context, meta *RowMeta) (Record, error) {
	cur, err := t.backend.ReadRow(ctx, t.name, meta.ID)
	if err != nil {
		return Record{}, err
	}
	if cur.Version != meta.Version {
		t.opts.logger.Info("version conflict",
			"id", meta.ID,
			"expected", meta.Version,
			"actual", cur.Version,
		)
		return Record{}, &ConflictError{Table: t.name, ID: meta.ID, Expected: meta.Version, Actual: cur.Version}
	}
	return cur, nil
}

func (t *Table[T]) observe(op string, start time.Time, err *error) {
	if t.opts.observer == nil {
		return
	}
	t.opts.observer.ObserveOp(t.name, op, time.Since(start), *err)
}

// nextVersion derives a version from the clock that is strictly after prev.
func nextVersion(prev string, now time.Time) string {
	now = now.UTC()
	if p, err := time.Parse(time.RFC3339Nano, prev); err == nil && !now.After(p) {
		now = p.Add(time.Nanosecond)
	}
	return now.Format(time.RFC3339Nano)
}
