package services_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cuesplice/internal/services"
)

func TestRunCommandCapturesOutput(t *testing.T) {
	script := filepath.Join(t.TempDir(), "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho boom >&2\nexit 3\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := services.RunCommand(context.Background(), script)
	if err == nil {
		t.Fatal("expected failure")
	}
	if got := services.CapturedOutput(err); !strings.Contains(got, "boom") {
		t.Fatalf("captured output = %q", got)
	}
	if services.Classify(err) != services.ClassFailure {
		t.Fatalf("unwrapped tool error should classify as failure, got %s", services.Classify(err))
	}
}

func TestRunCommandSuccess(t *testing.T) {
	script := filepath.Join(t.TempDir(), "ok.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := services.RunCommand(context.Background(), script); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
