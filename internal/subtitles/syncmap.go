package subtitles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"cuesplice/internal/services"
)

type syncMap struct {
	Fragments []syncFragment `json:"fragments"`
}

type syncFragment struct {
	ID    string          `json:"id"`
	Begin json.RawMessage `json:"begin"`
	End   json.RawMessage `json:"end"`
	Lines []string        `json:"lines"`
}

// LoadSyncMap reads a forced-alignment JSON sync map and converts its
// fragments to entries.
func LoadSyncMap(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "subtitles", "load sync map", fmt.Sprintf("sync map %s not found", path), err)
		}
		return nil, services.Wrap(services.ErrIO, "subtitles", "load sync map", "open sync map", err)
	}
	defer file.Close()
	return ParseSyncMap(file)
}

// ParseSyncMap decodes {"fragments":[{"begin":"0.000","end":"1.240","lines":["text"]}]}.
// Each fragment becomes one entry carrying its first line of text, trimmed.
// Begin and end may be JSON strings or numbers.
func ParseSyncMap(r io.Reader) ([]Entry, error) {
	var doc syncMap
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "subtitles", "parse sync map", "decode json", err)
	}
	entries := make([]Entry, 0, len(doc.Fragments))
	for i, frag := range doc.Fragments {
		begin, err := fragmentSeconds(frag.Begin)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "subtitles", "parse sync map", fmt.Sprintf("fragment %d begin", i), err)
		}
		end, err := fragmentSeconds(frag.End)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "subtitles", "parse sync map", fmt.Sprintf("fragment %d end", i), err)
		}
		var text string
		if len(frag.Lines) > 0 {
			text = strings.TrimSpace(frag.Lines[0])
		}
		entries = append(entries, Entry{
			Index: i + 1,
			Start: FromSeconds(begin),
			End:   FromSeconds(end),
			Text:  text,
		})
	}
	return entries, nil
}

func fragmentSeconds(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing value")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("invalid time %s", string(raw))
	}
	return f, nil
}
