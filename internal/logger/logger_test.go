package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "info", "json").Info("imported", "app_arn", "arn:aws:resiliencehub:app/x")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "imported" || record["app_arn"] != "arn:aws:resiliencehub:app/x" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "text")
	l.Info("hidden")
	l.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestInitHonoursEnv(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	t.Setenv(EnvLogLevel, "")
	t.Setenv("LOG_LEVEL", "debug")
	l := Init()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatalf("expected LOG_LEVEL fallback to enable debug")
	}
}
