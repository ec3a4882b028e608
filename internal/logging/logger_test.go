package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" Info ":  slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromContextAddsRequestID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	slog.SetDefault(New(&buf, "info", "json"))

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	FromContext(ctx).Info("hello")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-1"`) || !strings.Contains(out, `"msg":"hello"`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestNewRespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")
	logger.Info("dropped")
	logger.Warn("kept", "table", "projects")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, "msg=kept") || !strings.Contains(out, "table=projects") {
		t.Fatalf("unexpected text line: %s", out)
	}
}
