package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "15:04:05.000"

// consoleHandler writes one line per record:
//
//	15:04:05.000 WARN reconcile[3f2a9c1e/refine]: boundary overlap segment_index=4
//
// The component, run id and stage are pulled out of the fields into the
// line header; everything else follows as key=value pairs.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    string
	attrs     []field
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, addSource bool) *consoleHandler {
	return &consoleHandler{mu: new(sync.Mutex), w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]field, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.prefix, a)
		return true
	})

	var component, runID, stage string
	rest := fields[:0]
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			component = f.value.String()
		case FieldRunID:
			runID = f.value.String()
		case FieldStage:
			stage = f.value.String()
		default:
			rest = append(rest, f)
		}
	}

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var buf bytes.Buffer
	buf.WriteString(ts.Format(consoleTimeLayout))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')
	if head := lineHeader(component, runID, stage); head != "" {
		buf.WriteString(head)
		buf.WriteString(": ")
	}
	buf.WriteString(strings.TrimSpace(record.Message))
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range rest {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(consoleValue(f.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]field, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, a := range attrs {
		clone.attrs = appendField(clone.attrs, h.prefix, a)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// lineHeader renders "component[run/stage]". A missing component falls back
// to the stage; run ids are shortened to eight characters.
func lineHeader(component, runID, stage string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	name := component
	if name == "" {
		name, stage = stage, ""
	}
	var tag string
	switch {
	case runID != "" && stage != "":
		tag = runID + "/" + stage
	case runID != "":
		tag = runID
	case stage != "":
		tag = stage
	}
	if tag == "" {
		return name
	}
	return name + "[" + tag + "]"
}

// appendField flattens groups into dotted keys.
func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, g := range a.Value.Group() {
			dst = appendField(dst, inner, g)
		}
		return dst
	}
	return append(dst, field{key: prefix + a.Key, value: a.Value})
}

func consoleValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
