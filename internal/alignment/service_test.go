package alignment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"cuesplice/internal/alignment"
	"cuesplice/internal/config"
	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

const syncMapJSON = `{"fragments":[
 {"begin":"0.000","end":"1.240","lines":["Hello there. "]},
 {"begin":"1.240","end":"3.500","lines":["General Kenobi."]}
]}`

func inputs(t *testing.T) alignment.Request {
	t.Helper()
	dir := t.TempDir()
	audio := filepath.Join(dir, "voice.mp3")
	text := filepath.Join(dir, "script.txt")
	for _, p := range []string{audio, text} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return alignment.Request{AudioPath: audio, TranscriptPath: text}
}

func TestArgs(t *testing.T) {
	svc := alignment.NewService(alignment.Config{TaskLanguage: "fra"}, nil)
	got := svc.Args("a.mp3", "t.txt", "out.json")
	want := []string{"-m", "aeneas.tools.execute_task", "a.mp3", "t.txt",
		"task_language=fra|is_text_type=plain|os_task_file_format=json", "out.json"}
	if !slices.Equal(got, want) {
		t.Fatalf("Args = %q, want %q", got, want)
	}
}

func TestPaths(t *testing.T) {
	syncMap, srt := alignment.Paths(alignment.Request{TranscriptPath: "/work/script.txt"})
	if syncMap != "/work/script_aligned.json" || srt != "/work/script_with_timestamps.srt" {
		t.Fatalf("Paths = %q, %q", syncMap, srt)
	}
	syncMap, _ = alignment.Paths(alignment.Request{TranscriptPath: "/work/script.txt", OutputDir: "/out"})
	if syncMap != "/out/script_aligned.json" {
		t.Fatalf("OutputDir ignored: %q", syncMap)
	}
}

func TestAlignWritesSubtitles(t *testing.T) {
	req := inputs(t)
	req.OutputDir = filepath.Join(t.TempDir(), "out")
	svc := alignment.NewService(alignment.ConfigFrom(nil), nil)
	var gotName string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		return os.WriteFile(args[len(args)-1], []byte(syncMapJSON), 0o644)
	})

	res, err := svc.Align(context.Background(), req)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if gotName != "python3" {
		t.Fatalf("interpreter = %q", gotName)
	}
	if len(res.Entries) != 2 || res.Entries[0].Text != "Hello there." {
		t.Fatalf("unexpected entries %+v", res.Entries)
	}
	if res.SubtitlePath != filepath.Join(req.OutputDir, "script_with_timestamps.srt") {
		t.Fatalf("subtitle path = %q", res.SubtitlePath)
	}
	saved, err := subtitles.Load(res.SubtitlePath)
	if err != nil {
		t.Fatalf("load saved subtitles: %v", err)
	}
	if len(saved) != 2 || saved[1].End != subtitles.FromSeconds(3.5) {
		t.Fatalf("unexpected saved subtitles %+v", saved)
	}
}

func TestAlignMissingOutputIsFatalExternal(t *testing.T) {
	req := inputs(t)
	svc := alignment.NewService(alignment.Config{Python: "python3"}, nil)
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		return &services.ToolError{Tool: "python3", Output: "No module named aeneas", Err: errors.New("exit status 1")}
	})

	_, err := svc.Align(context.Background(), req)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if got := services.CapturedOutput(err); got != "No module named aeneas" {
		t.Fatalf("captured output = %q", got)
	}
}

func TestAlignSilentExitWithoutOutput(t *testing.T) {
	req := inputs(t)
	svc := alignment.NewService(alignment.Config{}, nil)
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return nil })

	_, err := svc.Align(context.Background(), req)
	if services.Classify(err) != services.ClassFatalExternal {
		t.Fatalf("expected fatal external, got %v", err)
	}
}

func TestAlignIgnoresStaleSyncMap(t *testing.T) {
	req := inputs(t)
	syncMap, _ := alignment.Paths(req)
	if err := os.WriteFile(syncMap, []byte(syncMapJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	svc := alignment.NewService(alignment.Config{}, nil)
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return errors.New("crashed") })

	if _, err := svc.Align(context.Background(), req); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("stale sync map must not count as output, got %v", err)
	}
}

func TestAlignMissingInput(t *testing.T) {
	req := inputs(t)
	req.AudioPath = filepath.Join(t.TempDir(), "missing.mp3")
	svc := alignment.NewService(alignment.Config{}, nil)
	svc.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("aligner should not run without inputs")
		return nil
	})
	_, err := svc.Align(context.Background(), req)
	if services.Classify(err) != services.ClassFatalIO {
		t.Fatalf("expected fatal IO, got %v", err)
	}
}

func TestAlignRejectsEmptyRequest(t *testing.T) {
	svc := alignment.NewService(alignment.Config{}, nil)
	if _, err := svc.Align(context.Background(), alignment.Request{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAlignWithStubInterpreter(t *testing.T) {
	req := inputs(t)
	python := filepath.Join(t.TempDir(), "python")
	// The last argument is the sync map path.
	script := "#!/bin/sh\nfor last; do :; done\necho aligning >&2\ncat > \"$last\" <<'JSON'\n" + syncMapJSON + "\nJSON\n"
	if err := os.WriteFile(python, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	svc := alignment.NewService(alignment.Config{Python: python, Timeout: 10 * time.Second}, nil)

	res, err := svc.Align(context.Background(), req)
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if len(res.Entries) != 2 || !strings.HasSuffix(res.SyncMapPath, "script_aligned.json") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Alignment.Python = "/usr/bin/python3.12"
	cfg.Alignment.TimeoutSeconds = 30
	got := alignment.ConfigFrom(&cfg)
	if got.Python != "/usr/bin/python3.12" || got.Timeout != 30*time.Second || got.TaskLanguage != "eng" {
		t.Fatalf("ConfigFrom = %+v", got)
	}
}
