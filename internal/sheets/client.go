package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// Client is a Backend over one Google Sheets spreadsheet. Every table is a
// tab named after it with the header in row 1.
type Client struct {
	srv           *sheetsv4.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

func New(ctx context.Context, serviceAccountJSONPath, spreadsheetID string) (*Client, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(sheetsv4.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return NewWithService(srv, spreadsheetID), nil
}

// NewWithService wraps an already configured Sheets service.
func NewWithService(srv *sheetsv4.Service, spreadsheetID string) *Client {
	return &Client{srv: srv, spreadsheetID: spreadsheetID, sheetIDs: map[string]int64{}}
}

func (c *Client) SpreadsheetID() string { return c.spreadsheetID }

// sheetID returns the numeric id of a tab, needed by batch requests.
func (c *Client) sheetID(ctx context.Context, title string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.sheetIDs[title]; ok {
		return id, true, nil
	}
	ss, err := c.srv.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			c.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	id, ok := c.sheetIDs[title]
	return id, ok, nil
}

func (c *Client) addSheet(ctx context.Context, title string) error {
	req := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{{
			AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := c.srv.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return err
	}
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
		c.mu.Lock()
		c.sheetIDs[title] = resp.Replies[0].AddSheet.Properties.SheetId
		c.mu.Unlock()
	}
	return nil
}
