package subtitles

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"cuesplice/internal/services"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:02,000
Hello there

2
00:00:02,000 --> 00:00:04,500
General Kenobi
you are a bold one

3
00:00:04,500 --> 00:00:07,000 X1:10 X2:20
Kill him
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Index != 2 || entries[1].Start != 2000 || entries[1].End != 4500 {
		t.Fatalf("unexpected entry 1: %+v", entries[1])
	}
	if entries[1].Text != "General Kenobi\nyou are a bold one" {
		t.Fatalf("unexpected multi-line text %q", entries[1].Text)
	}
	if entries[2].End != 7000 {
		t.Fatalf("expected position coordinates to be ignored, got end %d", entries[2].End)
	}
}

func TestParseCRLFAndBOM(t *testing.T) {
	crlf := "\ufeff" + strings.ReplaceAll(sampleSRT, "\n", "\r\n")
	entries, err := Parse(strings.NewReader(crlf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 3 || entries[0].Text != "Hello there" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseUTF16(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFE})
	for _, r := range "1\n00:00:01,000 --> 00:00:02,000\nhi\n" {
		buf.WriteByte(byte(r))
		buf.WriteByte(0)
	}
	entries, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "hi" || entries[0].Start != 1000 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseMalformedTiming(t *testing.T) {
	_, err := Parse(strings.NewReader("1\n00:00:01 --> soon\nhi\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestParseSkipsBlocksWithoutTiming(t *testing.T) {
	entries, err := Parse(strings.NewReader("just a note\n\n" + sampleSRT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
}

func TestWriteRenumbers(t *testing.T) {
	entries := []Entry{
		{Index: 7, Start: 0, End: 1240, Text: "one"},
		{Index: 9, Start: 1240, End: 2000, Text: "two"},
	}
	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,240\none\n\n2\n00:00:01,240 --> 00:00:02,000\ntwo\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "talk_refined.srt")
	entries, err := Parse(strings.NewReader(sampleSRT))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Save(path, entries); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(loaded))
	}
	for i := range loaded {
		if loaded[i] != entries[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, loaded[i], entries[i])
		}
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.srt"))
	if err == nil {
		t.Fatal("expected error")
	}
	if services.Classify(err) != services.ClassFatalIO {
		t.Fatalf("expected fatal io class, got %s (%v)", services.Classify(err), err)
	}
}

func TestIndexAt(t *testing.T) {
	entries := []Entry{
		{Start: 0, End: 2000},
		{Start: 2000, End: 4500},
		{Start: 5000, End: 7000},
	}
	tests := []struct {
		seconds float64
		want    int
	}{
		{0, 0},
		{1.5, 0},
		{2.0, 0},
		{2.001, 1},
		{4.5, 1},
		{4.7, -1},
		{7.0, 2},
		{7.01, -1},
		{-1, -1},
	}
	for _, tc := range tests {
		if got := IndexAt(entries, tc.seconds); got != tc.want {
			t.Errorf("IndexAt(%v) = %d, want %d", tc.seconds, got, tc.want)
		}
	}
	if IndexAt(nil, 1) != -1 {
		t.Fatal("expected -1 for empty list")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := []Entry{{Start: 0, End: 1000, Text: "a"}}
	cp := Clone(orig)
	cp[0].End = 5000
	if orig[0].End != 1000 {
		t.Fatal("Clone shares backing array")
	}
	if Clone(nil) != nil {
		t.Fatal("Clone(nil) should be nil")
	}
}

func TestDerivedPath(t *testing.T) {
	if got := DerivedPath("/tmp/talk.srt", "_refined", ".srt"); got != "/tmp/talk_refined.srt" {
		t.Fatalf("DerivedPath = %q", got)
	}
	if got := DerivedPath("/tmp/talk.txt", "_with_timestamps", ".srt"); got != "/tmp/talk_with_timestamps.srt" {
		t.Fatalf("DerivedPath = %q", got)
	}
}
