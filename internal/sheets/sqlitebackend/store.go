// Package sqlitebackend persists sheet tables in a single SQLite file. It is
// used for local runs where no spreadsheet is available.
package sqlitebackend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"hackathon-bot/internal/sheets"
)

var _ sheets.Backend = (*Store)(nil)

// Store keeps every row of every table in sheet_rows, ordered by insertion.
// Version checks happen inside the UPDATE and DELETE statements. Deleted ids
// are kept in sheet_tombstones and refused on insert.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "hackathon.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; sqlite serializes anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sheet_headers (
		tbl TEXT PRIMARY KEY,
		header TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sheet_headers: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sheet_rows (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		tbl TEXT NOT NULL,
		id TEXT NOT NULL,
		version TEXT NOT NULL,
		cells TEXT NOT NULL,
		UNIQUE (tbl, id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sheet_rows: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS sheet_tombstones (
		tbl TEXT NOT NULL,
		id TEXT NOT NULL,
		PRIMARY KEY (tbl, id)
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sheet_tombstones: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) EnsureTable(ctx context.Context, table string, header []string) error {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT header FROM sheet_headers WHERE tbl = ?`, table).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		data, err := json.Marshal(header)
		if err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, `INSERT INTO sheet_headers (tbl, header) VALUES (?, ?)`, table, string(data))
		return err
	}
	if err != nil {
		return fmt.Errorf("select header: %w", err)
	}
	var have []string
	if err := json.Unmarshal([]byte(raw), &have); err != nil {
		return fmt.Errorf("decode header: %w", err)
	}
	if !slices.Equal(have, header) {
		return fmt.Errorf("%s: header mismatch: have %v, want %v", table, have, header)
	}
	return nil
}

func (s *Store) ReadRows(ctx context.Context, table string) ([]sheets.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, version, cells FROM sheet_rows WHERE tbl = ? ORDER BY seq`, table)
	if err != nil {
		return nil, fmt.Errorf("select rows: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []sheets.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) ReadRow(ctx context.Context, table, id string) (sheets.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, version, cells FROM sheet_rows WHERE tbl = ? AND id = ?`, table, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return sheets.Record{}, &sheets.NotFoundError{Table: table, ID: id}
	}
	return rec, err
}

func (s *Store) InsertRow(ctx context.Context, table string, rec sheets.Record) error {
	cells, err := json.Marshal(rec.Cells)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (tbl, id, version, cells)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM sheet_tombstones WHERE tbl = ? AND id = ?)
		ON CONFLICT (tbl, id) DO NOTHING`,
		table, rec.ID, rec.Version, string(cells), table, rec.ID)
	if err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &sheets.ExistsError{Table: table, ID: rec.ID}
	}
	return nil
}

func (s *Store) WriteRow(ctx context.Context, table string, rec sheets.Record, expected string) error {
	cells, err := json.Marshal(rec.Cells)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sheet_rows SET version = ?, cells = ? WHERE tbl = ? AND id = ? AND version = ?`,
		rec.Version, string(cells), table, rec.ID, expected)
	if err != nil {
		return fmt.Errorf("update row: %w", err)
	}
	return s.checkAffected(ctx, res, table, rec.ID, expected)
}

func (s *Store) DeleteRow(ctx context.Context, table, id, expected string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM sheet_rows WHERE tbl = ? AND id = ? AND version = ?`, table, id, expected)
	if err != nil {
		return fmt.Errorf("delete row: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		_ = tx.Rollback()
		return s.checkAffected(ctx, res, table, id, expected)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sheet_tombstones (tbl, id) VALUES (?, ?) ON CONFLICT DO NOTHING`, table, id); err != nil {
		return fmt.Errorf("record tombstone: %w", err)
	}
	return tx.Commit()
}

// checkAffected tells a missing row apart from a stale version when a
// guarded statement touched nothing.
func (s *Store) checkAffected(ctx context.Context, res sql.Result, table, id, expected string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	cur, err := s.ReadRow(ctx, table, id)
	if err != nil {
		return err
	}
	return &sheets.ConflictError{Table: table, ID: id, Expected: expected, Actual: cur.Version}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (sheets.Record, error) {
	var (
		rec   sheets.Record
		cells string
	)
	if err := sc.Scan(&rec.ID, &rec.Version, &cells); err != nil {
		return sheets.Record{}, err
	}
	if err := json.Unmarshal([]byte(cells), &rec.Cells); err != nil {
		return sheets.Record{}, fmt.Errorf("decode cells of %s: %w", rec.ID, err)
	}
	return rec, nil
}
