package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"cuesplice/internal/subtitles"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return path
}

// Cue builds a subtitle entry from second offsets.
func Cue(start, end float64, text string) subtitles.Entry {
	return subtitles.Entry{Start: subtitles.FromSeconds(start), End: subtitles.FromSeconds(end), Text: text}
}

// WriteSRT saves entries to path.
func WriteSRT(t testing.TB, path string, entries ...subtitles.Entry) {
	t.Helper()

	if err := subtitles.Save(path, entries); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
}
