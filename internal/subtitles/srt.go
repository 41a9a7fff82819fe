package subtitles

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"cuesplice/internal/services"
)

// Entry is one timed subtitle cue.
type Entry struct {
	Index int
	Start Timecode
	End   Timecode
	Text  string
}

// Duration returns End - Start.
func (e Entry) Duration() Timecode {
	return e.End - e.Start
}

// Clone returns an independent copy of entries.
func Clone(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Load reads an SRT file. A missing file is reported as services.ErrNotFound.
func Load(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "subtitles", "load", fmt.Sprintf("subtitle file %s not found", path), err)
		}
		return nil, services.Wrap(services.ErrIO, "subtitles", "load", "open subtitle file", err)
	}
	defer file.Close()

	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Parse reads SRT cues from r. UTF-8 with or without BOM and BOM-marked
// UTF-16 input are accepted. Blocks without a timing line are skipped; a
// malformed timing line is an error.
func Parse(r io.Reader) ([]Entry, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		entries []Entry
		block   []string
		lineNo  int
		startNo int
	)
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		entry, ok, err := parseBlock(block)
		block = block[:0]
		if err != nil {
			return services.Wrap(services.ErrValidation, "subtitles", "parse", fmt.Sprintf("block at line %d", startNo), err)
		}
		if ok {
			entries = append(entries, entry)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if len(block) == 0 {
			startNo = lineNo
		}
		block = append(block, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrIO, "subtitles", "parse", "read subtitle data", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseBlock(lines []string) (Entry, bool, error) {
	var entry Entry
	timing := -1
	for i, line := range lines {
		if strings.Contains(line, "-->") {
			timing = i
			break
		}
	}
	if timing < 0 {
		return entry, false, nil
	}
	if timing > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(lines[timing-1])); err == nil {
			entry.Index = n
		}
	}

	startText, endText, _ := strings.Cut(lines[timing], "-->")
	endFields := strings.Fields(endText)
	if len(endFields) == 0 {
		return entry, false, fmt.Errorf("missing end time in %q", lines[timing])
	}
	start, err := ParseTimecode(startText)
	if err != nil {
		return entry, false, err
	}
	end, err := ParseTimecode(endFields[0])
	if err != nil {
		return entry, false, err
	}
	entry.Start = start
	entry.End = end
	entry.Text = strings.Join(lines[timing+1:], "\n")
	return entry, true, nil
}

// Write emits entries in SRT form, renumbered from 1.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for i, entry := range entries {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", i+1, entry.Start, entry.End, entry.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes entries to path, replacing it atomically.
func Save(path string, entries []Entry) error {
	var buf bytes.Buffer
	if err := Write(&buf, entries); err != nil {
		return services.Wrap(services.ErrIO, "subtitles", "save", "encode subtitles", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "subtitles", "save", "create output directory", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return services.Wrap(services.ErrIO, "subtitles", "save", "create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return services.Wrap(services.ErrIO, "subtitles", "save", "write subtitles", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrIO, "subtitles", "save", "close subtitles", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return services.Wrap(services.ErrIO, "subtitles", "save", "replace subtitles", err)
	}
	return nil
}

// IndexAt returns the position of the first entry whose [Start, End] range
// contains seconds, or -1 when no entry does.
func IndexAt(entries []Entry, seconds float64) int {
	at := FromSeconds(seconds)
	for i, entry := range entries {
		if entry.Start <= at && at <= entry.End {
			return i
		}
	}
	return -1
}

// DerivedPath returns path with suffix inserted before the extension,
// e.g. DerivedPath("a/talk.srt", "_refined", ".srt") = "a/talk_refined.srt".
func DerivedPath(path, suffix, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + suffix + ext
}
