package config

import (
	"slices"
	"strings"
	"testing"
)

func TestFromEnvDefaultsToSheets(t *testing.T) {
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", " sheet-1 ")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "/tmp/sa.json")
	t.Setenv("ADMIN_TG_IDS", "1,22")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("from env: %v", err)
	}
	if c.Backend != BackendSheets || c.SpreadsheetID != "sheet-1" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.HTTPAddr != ":8080" || c.LogLevel != "info" || c.LogFormat != "text" {
		t.Fatalf("defaults not applied: %+v", c)
	}
	if !slices.Equal(c.AdminTGIDs, []int64{1, 22}) {
		t.Fatalf("admin ids = %v", c.AdminTGIDs)
	}
}

func TestFromEnvSheetsRequiresSpreadsheet(t *testing.T) {
	t.Setenv("STORE_BACKEND", "sheets")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "/tmp/sa.json")

	_, err := FromEnv()
	if err == nil || !strings.Contains(err.Error(), "GOOGLE_SHEETS_SPREADSHEET_ID") {
		t.Fatalf("expected spreadsheet error, got %v", err)
	}
}

func TestFromEnvMemoryAndSQLite(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	if c, err := FromEnv(); err != nil || c.Backend != BackendMemory {
		t.Fatalf("memory: %+v, %v", c, err)
	}

	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	if c, err := FromEnv(); err != nil || c.SQLitePath != "/tmp/x.db" {
		t.Fatalf("sqlite: %+v, %v", c, err)
	}
}

func TestFromEnvErrors(t *testing.T) {
	t.Setenv("STORE_BACKEND", "excel")
	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "excel") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}

	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("ADMIN_TG_IDS", "1,abc")
	if _, err := FromEnv(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse error, got %v", err)
	}
}
