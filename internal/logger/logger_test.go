package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("should be filtered")
	log.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("Expected info message to be filtered at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("Expected warn message to appear")
	}
}

func TestLoggerJSONFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.WithModule("webhook").
		WithRequestID("req-123").
		WithError(errors.New("boom")).
		Warn("something happened")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v", err)
	}

	if record["message"] != "something happened" {
		t.Errorf("Expected message field, got %v", record["message"])
	}
	if record["level"] != "warning" {
		t.Errorf("Expected level 'warning', got %v", record["level"])
	}
	if record["module"] != "webhook" {
		t.Errorf("Expected module 'webhook', got %v", record["module"])
	}
	if record["request_id"] != "req-123" {
		t.Errorf("Expected request_id 'req-123', got %v", record["request_id"])
	}
	if record["error"] != "boom" {
		t.Errorf("Expected error 'boom', got %v", record["error"])
	}
	if _, ok := record["timestamp"]; !ok {
		t.Error("Expected timestamp field")
	}
}

func TestLoggerWithFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.WithFields(map[string]any{
		"status": 200,
		"path":   "/callback",
	}).Info("request completed")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Failed to parse log output as JSON: %v", err)
	}
	if record["path"] != "/callback" {
		t.Errorf("Expected path '/callback', got %v", record["path"])
	}
}

func TestParseLevelDefaults(t *testing.T) {
	t.Parallel()

	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Errorf("Expected unknown level to default to info, got %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", got)
	}
}

func TestMultiHandlerFanOut(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	multi := NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		nil, // skipped
		slog.NewJSONHandler(&b, nil),
	)
	log := slog.New(multi)

	log.Info("fan out")

	if !strings.Contains(a.String(), "fan out") {
		t.Error("Expected first handler to receive record")
	}
	if !strings.Contains(b.String(), "fan out") {
		t.Error("Expected second handler to receive record")
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	multi := NewMultiHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	if multi.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("Expected info to be disabled when only error handler present")
	}
	if !multi.Enabled(t.Context(), slog.LevelError) {
		t.Error("Expected error to be enabled")
	}
}
