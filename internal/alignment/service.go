package alignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuesplice/internal/config"
	"cuesplice/internal/logging"
	"cuesplice/internal/services"
	"cuesplice/internal/subtitles"
)

// Module is the python module that performs the alignment.
const Module = "aeneas.tools.execute_task"

// Config captures runtime settings for the aligner.
type Config struct {
	Python       string
	TaskLanguage string
	Timeout      time.Duration
}

// ConfigFrom reads the alignment section of cfg.
func ConfigFrom(cfg *config.Config) Config {
	if cfg == nil {
		return Config{Python: "python3", TaskLanguage: "eng"}
	}
	return Config{
		Python:       cfg.PythonBinary(),
		TaskLanguage: cfg.Alignment.TaskLanguage,
		Timeout:      time.Duration(cfg.Alignment.TimeoutSeconds) * time.Second,
	}
}

// Request names the inputs of one alignment.
type Request struct {
	AudioPath      string `validate:"required"`
	TranscriptPath string `validate:"required"`
	// OutputDir receives the sync map and SRT. Empty means the transcript's directory.
	OutputDir string
}

// Result describes what an alignment produced.
type Result struct {
	SyncMapPath  string
	SubtitlePath string
	Entries      []subtitles.Entry
}

// Service runs the aligner.
type Service struct {
	cfg    Config
	logger *slog.Logger
	run    services.CommandRunner
}

// NewService creates an aligner service.
func NewService(cfg Config, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logging.NewComponentLogger(logger, "alignment")}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(run services.CommandRunner) {
	s.run = run
}

// Args returns the aligner command line after the interpreter.
func (s *Service) Args(audio, transcript, syncMap string) []string {
	lang := strings.TrimSpace(s.cfg.TaskLanguage)
	if lang == "" {
		lang = "eng"
	}
	task := fmt.Sprintf("task_language=%s|is_text_type=plain|os_task_file_format=json", lang)
	return []string{"-m", Module, audio, transcript, task, syncMap}
}

// Paths returns the sync map and SRT paths an alignment of req writes.
func Paths(req Request) (syncMap, srt string) {
	dir := req.OutputDir
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Dir(req.TranscriptPath)
	}
	stem := strings.TrimSuffix(filepath.Base(req.TranscriptPath), filepath.Ext(req.TranscriptPath))
	return filepath.Join(dir, stem+"_aligned.json"), filepath.Join(dir, stem+"_with_timestamps.srt")
}

// Align runs the aligner over req and saves the resulting subtitles.
func (s *Service) Align(ctx context.Context, req Request) (Result, error) {
	logger := logging.WithContext(ctx, s.logger)
	if err := services.ValidateStruct("align", req); err != nil {
		return Result{}, err
	}
	for _, path := range []string{req.AudioPath, req.TranscriptPath} {
		if _, err := os.Stat(path); err != nil {
			marker := services.ErrIO
			if errors.Is(err, os.ErrNotExist) {
				marker = services.ErrNotFound
			}
			return Result{}, services.Wrap(marker, "align", "open input", path, err)
		}
	}

	syncMap, srt := Paths(req)
	if err := os.MkdirAll(filepath.Dir(syncMap), 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrIO, "align", "create output dir", filepath.Dir(syncMap), err)
	}
	// A stale map from an earlier run must not pass for fresh output.
	if err := os.Remove(syncMap); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Result{}, services.Wrap(services.ErrIO, "align", "remove stale sync map", syncMap, err)
	}

	runCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	args := s.Args(req.AudioPath, req.TranscriptPath, syncMap)
	logger.Info("running aligner",
		logging.String("python", s.python()),
		logging.String("audio", req.AudioPath),
		logging.String("transcript", req.TranscriptPath),
		logging.String("task_language", s.cfg.TaskLanguage),
	)
	started := time.Now()
	runErr := s.exec(runCtx, args...)

	if _, err := os.Stat(syncMap); err != nil {
		output := services.CapturedOutput(runErr)
		logger.Error("aligner produced no sync map",
			logging.String("sync_map", syncMap),
			logging.String("output", output),
			logging.Error(runErr),
		)
		cause := runErr
		if cause == nil {
			cause = &services.ToolError{Tool: s.python(), Err: errors.New("exited without writing " + syncMap)}
		}
		marker := services.ErrExternalTool
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return Result{}, services.Wrap(marker, "align", "aeneas", "sync map was not created", cause)
	}
	if runErr != nil {
		// The map exists; keep going but record what the aligner complained about.
		logging.WarnEvent(logger, "aligner exited with error after writing sync map", "aligner_nonzero_exit",
			logging.String("output", services.CapturedOutput(runErr)),
			logging.Error(runErr),
		)
	}

	entries, err := subtitles.LoadSyncMap(syncMap)
	if err != nil {
		return Result{}, err
	}
	if err := subtitles.Save(srt, entries); err != nil {
		return Result{}, err
	}
	logger.Info("alignment complete",
		logging.String("subtitles", srt),
		logging.Int("fragments", len(entries)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{SyncMapPath: syncMap, SubtitlePath: srt, Entries: entries}, nil
}

func (s *Service) python() string {
	if p := strings.TrimSpace(s.cfg.Python); p != "" {
		return p
	}
	return "python3"
}

func (s *Service) exec(ctx context.Context, args ...string) error {
	if s.run != nil {
		return s.run(ctx, s.python(), args...)
	}
	return services.RunCommand(ctx, s.python(), args...)
}
