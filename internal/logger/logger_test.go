package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestWithContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", true)
	defer Init("info", false)

	ctx := ContextWithRequestID(context.Background(), "req-42")
	WithContext(ctx).Info("hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if line["request_id"] != "req-42" {
		t.Fatalf("expected request_id in log line, got %v", line)
	}
}

func TestWithContextWithoutRequestID(t *testing.T) {
	if RequestID(context.Background()) != "" {
		t.Fatalf("expected empty request id")
	}
	if WithContext(context.Background()) != Get() {
		t.Fatalf("expected default logger for bare context")
	}
}
