package sheets

import (
	"context"
	"errors"
	"fmt"
	"slices"

	sheetsv4 "google.golang.org/api/sheets/v4"
)

var _ Backend = (*Client)(nil)

func (c *Client) readAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, sheet+"!A:Z").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, sheet string, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, sheet+"!A:Z", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (c *Client) updateRow(ctx context.Context, sheet string, rowNum int, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A%d", sheet, rowNum), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (c *Client) deleteRow(ctx context.Context, sheet string, rowNum int) error {
	id, ok, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: no such tab", sheet)
	}
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			DeleteDimension: &sheetsv4.DeleteDimensionRequest{
				Range: &sheetsv4.DimensionRange{
					SheetId:    id,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	_, err = c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	return err
}

// EnsureTable creates the tab and writes the header when the tab is empty.
// An existing header must match exactly, column for column. The tombstone
// tab is ensured alongside every table.
func (c *Client) EnsureTable(ctx context.Context, table string, header []string) error {
	if err := c.ensureTab(ctx, TombstoneTable, tombstoneHeader); err != nil {
		return err
	}
	return c.ensureTab(ctx, table, header)
}

func (c *Client) ensureTab(ctx context.Context, table string, header []string) error {
	_, ok, err := c.sheetID(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		if err := c.addSheet(ctx, table); err != nil {
			return fmt.Errorf("add tab %s: %w", table, err)
		}
	}
	values, err := c.readAll(ctx, table)
	if err != nil {
		return err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return c.updateRow(ctx, table, 1, toValues(header))
	}
	got := make([]string, len(values[0]))
	for i := range values[0] {
		got[i] = get(values[0], i)
	}
	if !slices.Equal(got, header) {
		return fmt.Errorf("%s: header mismatch: have %v, want %v", table, got, header)
	}
	return nil
}

func (c *Client) ReadRows(ctx context.Context, table string) ([]Record, error) {
	values, err := c.readAll(ctx, table)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	// header row at index 0
	for i := 1; i < len(values); i++ {
		if rec, ok := toRecord(values[i]); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *Client) ReadRow(ctx context.Context, table, id string) (Record, error) {
	rec, _, err := c.find(ctx, table, id)
	return rec, err
}

func (c *Client) InsertRow(ctx context.Context, table string, rec Record) error {
	_, _, err := c.find(ctx, table, rec.ID)
	if err == nil {
		return &ExistsError{Table: table, ID: rec.ID}
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	deleted, err := c.deleted(ctx, table, rec.ID)
	if err != nil {
		return err
	}
	if deleted {
		return &ExistsError{Table: table, ID: rec.ID}
	}
	return c.appendRow(ctx, table, fromRecord(rec))
}

// WriteRow re-checks the version against the sheet before writing. The check
// and the write are two requests, so a writer outside this process can still
// slip in between them.
func (c *Client) WriteRow(ctx context.Context, table string, rec Record, expected string) error {
	cur, rowNum, err := c.find(ctx, table, rec.ID)
	if err != nil {
		return err
	}
	if cur.Version != expected {
		return &ConflictError{Table: table, ID: rec.ID, Expected: expected, Actual: cur.Version}
	}
	return c.updateRow(ctx, table, rowNum, fromRecord(rec))
}

func (c *Client) DeleteRow(ctx context.Context, table, id, expected string) error {
	cur, rowNum, err := c.find(ctx, table, id)
	if err != nil {
		return err
	}
	if cur.Version != expected {
		return &ConflictError{Table: table, ID: id, Expected: expected, Actual: cur.Version}
	}
	// reserve the id before the row goes away
	if err := c.appendRow(ctx, TombstoneTable, toValues([]string{table, id})); err != nil {
		return fmt.Errorf("record tombstone: %w", err)
	}
	return c.deleteRow(ctx, table, rowNum)
}

// deleted reports whether id was ever deleted from table.
func (c *Client) deleted(ctx context.Context, table, id string) (bool, error) {
	values, err := c.readAll(ctx, TombstoneTable)
	if err != nil {
		return false, fmt.Errorf("read tombstones: %w", err)
	}
	for i := 1; i < len(values); i++ {
		if get(values[i], 0) == table && get(values[i], 1) == id {
			return true, nil
		}
	}
	return false, nil
}

// find returns the record for id and its 1-based sheet row number.
func (c *Client) find(ctx context.Context, table, id string) (Record, int, error) {
	values, err := c.readAll(ctx, table)
	if err != nil {
		return Record{}, 0, err
	}
	for i := 1; i < len(values); i++ {
		if get(values[i], 0) == id {
			rec, _ := toRecord(values[i])
			return rec, i + 1, nil // sheet rows are 1-indexed; i is 0-indexed in values
		}
	}
	return Record{}, 0, &NotFoundError{Table: table, ID: id}
}

// ---------- helpers ----------

func toRecord(row []interface{}) (Record, bool) {
	id := get(row, 0)
	if id == "" {
		return Record{}, false
	}
	rec := Record{ID: id, Version: get(row, 1)}
	for i := 2; i < len(row); i++ {
		rec.Cells = append(rec.Cells, get(row, i))
	}
	return rec, true
}

func fromRecord(rec Record) []interface{} {
	row := make([]interface{}, 0, len(rec.Cells)+2)
	row = append(row, rec.ID, rec.Version)
	for _, c := range rec.Cells {
		row = append(row, c)
	}
	return row
}

func toValues(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func get(row []interface{}, idx int) string {
	if idx < 0 || idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}
