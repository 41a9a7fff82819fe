package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"cuesplice/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose directories live under a fresh temp dir.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.ClipsDir = filepath.Join(base, "clips")

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTool writes an executable shell script to the base dir's bin folder
// and points the named tool ("ffmpeg", "ffprobe" or "python") at it.
func WithTool(tool, script string) ConfigOption {
	return func(b *configBuilder) {
		path := WriteScript(b.t, filepath.Join(b.baseDir, "bin"), tool, script)
		switch tool {
		case "ffmpeg":
			b.cfg.Tools.FFmpeg = path
		case "ffprobe":
			b.cfg.Tools.FFprobe = path
		case "python":
			b.cfg.Alignment.Python = path
		default:
			b.t.Fatalf("unknown tool %q", tool)
		}
	}
}

// WithStubbedBinaries writes no-op executables for names and prepends their
// directory to PATH. With no names, ffmpeg, ffprobe and python3 are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "python3"}
		}
		binDir := filepath.Join(b.baseDir, "stubs")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0\n")
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
