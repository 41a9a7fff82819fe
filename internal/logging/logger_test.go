package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuesplice/internal/config"
	"cuesplice/internal/logging"
	"cuesplice/internal/services"
)

func newFileLogger(t *testing.T, level, format string) (func(string, ...any), func(string, ...any), string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	logger, err := logging.New(logging.Options{Level: level, Format: format, OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger.Info, logger.Debug, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestNewFromConfigCreatesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello", logging.Args(logging.String("k", "v"))...)

	contents := readLog(t, filepath.Join(cfg.Paths.LogDir, "cuesplice.log"))
	if !strings.Contains(contents, `"msg":"hello"`) {
		t.Fatalf("expected message in log file, got %q", contents)
	}
}

func TestNewFromConfigNil(t *testing.T) {
	logger, err := logging.NewFromConfig(nil)
	if err != nil {
		t.Fatalf("NewFromConfig(nil) returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func TestConsoleInfoOmitsSource(t *testing.T) {
	info, _, path := newFileLogger(t, "info", "console")
	info("scan complete", "samples", 42)

	contents := readLog(t, path)
	if !strings.Contains(contents, "INFO scan complete") {
		t.Fatalf("expected level and message, got %q", contents)
	}
	if !strings.Contains(contents, "samples=42") {
		t.Fatalf("expected key=value field, got %q", contents)
	}
	if strings.Contains(contents, ".go:") {
		t.Fatalf("info logger should not include source, got %q", contents)
	}
}

func TestConsoleDebugIncludesSource(t *testing.T) {
	_, debug, path := newFileLogger(t, "debug", "console")
	debug("examining candidate")

	contents := readLog(t, path)
	if !strings.Contains(contents, "logger_test.go:") {
		t.Fatalf("debug logger should include source, got %q", contents)
	}
}

func TestJSONFormat(t *testing.T) {
	info, _, path := newFileLogger(t, "info", "json")
	info("json message", "k", "v")

	line := strings.TrimSpace(readLog(t, path))
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("decode json log line %q: %v", line, err)
	}
	if payload["level"] != "info" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
	if payload["k"] != "v" {
		t.Fatalf("expected k=v, got %v", payload["k"])
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	info, debug, path := newFileLogger(t, "loud", "console")
	debug("hidden")
	info("visible")

	contents := readLog(t, path)
	if strings.Contains(contents, "hidden") {
		t.Fatalf("debug record should be filtered, got %q", contents)
	}
	if !strings.Contains(contents, "visible") {
		t.Fatalf("info record missing, got %q", contents)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStage(ctx, "refine")
	ctx = services.WithSegment(ctx, 3)

	logging.WithContext(ctx, logger).Info("contextual log")

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload[logging.FieldRunID] != "run-1" {
		t.Fatalf("run_id = %v", payload[logging.FieldRunID])
	}
	if payload[logging.FieldStage] != "refine" {
		t.Fatalf("stage = %v", payload[logging.FieldStage])
	}
	if payload[logging.FieldSegment] != float64(3) {
		t.Fatalf("segment_index = %v", payload[logging.FieldSegment])
	}
	if _, ok := payload[logging.FieldVariation]; ok {
		t.Fatal("variation should be absent when not set")
	}
}

func TestComponentPrefixAndWarnEvent(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "component.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "reconcile")
	logging.WarnEvent(component, "boundary overlap", "boundary_overlap", logging.Int("index", 2))

	contents := readLog(t, logPath)
	if !strings.Contains(contents, "WARN reconcile: boundary overlap") {
		t.Fatalf("expected component prefix, got %q", contents)
	}
	if !strings.Contains(contents, "event_type=boundary_overlap") {
		t.Fatalf("expected event_type field, got %q", contents)
	}
	if strings.Contains(contents, "component=") {
		t.Fatalf("component should not repeat as a field, got %q", contents)
	}
}

func TestConsoleHeaderCarriesRunAndStage(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "header.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithStage(services.WithRunID(context.Background(), "3f2a9c1e-5b7d-4c1a-9e55-0a1b2c3d4e5f"), "splice")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "splice")).Info("output rendered", logging.Int("segments", 4))
	logging.WithContext(services.WithStage(context.Background(), "scan"), logger).Info("scan started")

	contents := readLog(t, logPath)
	if !strings.Contains(contents, "INFO splice[3f2a9c1e/splice]: output rendered segments=4") {
		t.Fatalf("expected run/stage header, got %q", contents)
	}
	if !strings.Contains(contents, "INFO scan: scan started") {
		t.Fatalf("expected stage to stand in for the component, got %q", contents)
	}
	if strings.Contains(contents, "run_id=") || strings.Contains(contents, "stage=") {
		t.Fatalf("header fields should not repeat, got %q", contents)
	}
}

func TestGroupFlattensInConsoleAndNestsInJSON(t *testing.T) {
	dir := t.TempDir()
	consolePath := filepath.Join(dir, "console.log")
	jsonPath := filepath.Join(dir, "json.log")
	console, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{consolePath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	jsonLogger, err := logging.New(logging.Options{Format: "json", OutputPaths: []string{jsonPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	clip := logging.Group("clip", logging.String("path", "scene one.mp4"), logging.Float64("duration", 1.5))
	console.Info("segment rendered", logging.Args(clip)...)
	jsonLogger.Info("segment rendered", logging.Args(clip)...)

	contents := readLog(t, consolePath)
	if !strings.Contains(contents, `clip.path="scene one.mp4" clip.duration=1.5`) {
		t.Fatalf("expected dotted group keys, got %q", contents)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, jsonPath))), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	group, ok := payload["clip"].(map[string]any)
	if !ok || group["duration"] != 1.5 {
		t.Fatalf("expected nested clip group, got %v", payload["clip"])
	}
}

func TestNilLoggersAreSafe(t *testing.T) {
	logging.WarnEvent(nil, "ignored", "noop")
	logging.NewComponentLogger(nil, "x").Info("discarded")
	logging.WithContext(context.Background(), nil).Info("discarded")
}
