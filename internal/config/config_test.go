package config_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cuesplice/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())
	for _, key := range []string{"CUESPLICE_FFMPEG", "CUESPLICE_FFPROBE", "CUESPLICE_PYTHON"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(home, ".local", "share", "cuesplice")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.ClipsDir != "" {
		t.Fatalf("expected empty clips dir, got %q", cfg.Paths.ClipsDir)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tool defaults: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if cfg.PythonBinary() != "python3" {
		t.Fatalf("unexpected python default: %q", cfg.PythonBinary())
	}
	if cfg.RegistryPath() != filepath.Join(wantState, "registry.db") {
		t.Fatalf("unexpected registry path: %q", cfg.RegistryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestDefaultTuning(t *testing.T) {
	cfg := config.Default()
	tuning := cfg.Tuning()

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"confidence_threshold", tuning.ConfidenceThreshold, 4.2},
		{"glitch_interval", tuning.GlitchInterval, 0.27},
		{"match_window_early", tuning.MatchWindowEarly, 0.25},
		{"match_window_late", tuning.MatchWindowLate, 1.5},
		{"timestamp_offset", tuning.TimestampOffset, 0.05},
		{"start_nudge", tuning.StartNudge, 0.1},
	}
	for _, tc := range checks {
		if math.Abs(tc.got-tc.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if tuning.ROIBleed != 40 || tuning.ROILineHeight != 60 {
		t.Fatalf("unexpected region defaults: %d/%d", tuning.ROIBleed, tuning.ROILineHeight)
	}
	if tuning.BinarizeCutoff != 200 {
		t.Fatalf("unexpected cutoff: %d", tuning.BinarizeCutoff)
	}
}

func TestLoadCustomPath(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "cuesplice.toml")

	type payload struct {
		Detection struct {
			ConfidenceThreshold float64 `toml:"confidence_threshold"`
			ROILineHeight       int     `toml:"roi_line_height"`
		} `toml:"detection"`
		Splice struct {
			AspectRatio string `toml:"aspect_ratio"`
			FontSize    int    `toml:"font_size"`
		} `toml:"splice"`
		Tools struct {
			FFmpeg string `toml:"ffmpeg"`
		} `toml:"tools"`
	}
	custom := payload{}
	custom.Detection.ConfidenceThreshold = 6.5
	custom.Detection.ROILineHeight = 80
	custom.Splice.AspectRatio = "4:5"
	custom.Splice.FontSize = 48
	custom.Tools.FFmpeg = "/opt/ffmpeg/bin/ffmpeg"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Detection.ConfidenceThreshold != 6.5 {
		t.Fatalf("expected threshold override, got %v", cfg.Detection.ConfidenceThreshold)
	}
	if cfg.Detection.ROILineHeight != 80 {
		t.Fatalf("expected line height override, got %d", cfg.Detection.ROILineHeight)
	}
	if cfg.Detection.GlitchInterval != 0.27 {
		t.Fatalf("expected untouched default glitch interval, got %v", cfg.Detection.GlitchInterval)
	}
	ratio, err := cfg.Splice.Ratio()
	if err != nil || math.Abs(ratio-0.8) > 1e-9 {
		t.Fatalf("expected ratio 0.8, got %v (%v)", ratio, err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg override, got %q", cfg.FFmpegBinary())
	}
}

func TestLoadNormalizesTaskLanguage(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "cuesplice.toml")
	if err := os.WriteFile(configPath, []byte("[alignment]\ntask_language = \"French\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Alignment.TaskLanguage != "fra" {
		t.Fatalf("task language = %q, want fra", cfg.Alignment.TaskLanguage)
	}
}

func TestLoadNormalizesDecoder(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "cuesplice.toml")
	if err := os.WriteFile(configPath, []byte("[detection]\ndecoder = \" GoCV \"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Detection.Decoder != "gocv" {
		t.Fatalf("decoder = %q, want gocv", cfg.Detection.Decoder)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	configPath := filepath.Join(t.TempDir(), "cuesplice.toml")
	if err := os.WriteFile(configPath, []byte("[detection]\nthreshold = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvironmentFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("CUESPLICE_FFMPEG", "/env/ffmpeg")
	t.Setenv("CUESPLICE_PYTHON", "/env/python")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/env/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.PythonBinary() != "/env/python" {
		t.Errorf("expected python from env, got %q", cfg.PythonBinary())
	}
	if cfg.FFprobeBinary() != "ffprobe" {
		t.Errorf("expected ffprobe default, got %q", cfg.FFprobeBinary())
	}
}

func TestDotEnvBesideConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "cuesplice.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CUESPLICE_FFPROBE=/dotenv/ffprobe\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("CUESPLICE_FFPROBE") })

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFprobeBinary() != "/dotenv/ffprobe" {
		t.Fatalf("expected ffprobe from .env, got %q", cfg.FFprobeBinary())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[detection]") {
		t.Fatalf("sample config missing detection section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Detection.ConfidenceThreshold != 4.2 {
		t.Fatalf("sample threshold = %v", cfg.Detection.ConfidenceThreshold)
	}
	if !strings.Contains(cfg.Paths.StateDir, "cuesplice") {
		t.Fatalf("expected state dir to contain cuesplice, got %q", cfg.Paths.StateDir)
	}
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"4:5", 0.8, false},
		{"16/9", 16.0 / 9.0, false},
		{"1.5", 1.5, false},
		{"0:5", 0, true},
		{"wide", 0, true},
		{"-1", 0, true},
	}
	for _, tc := range tests {
		got, err := config.ParseAspectRatio(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseAspectRatio(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAspectRatio(%q) error: %v", tc.in, err)
			continue
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ParseAspectRatio(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"negative threshold": func(c *config.Config) { c.Detection.ConfidenceThreshold = -1 },
		"zero line height":   func(c *config.Config) { c.Detection.ROILineHeight = 0 },
		"cutoff overflow":    func(c *config.Config) { c.Detection.BinarizeCutoff = 300 },
		"negative window":    func(c *config.Config) { c.Reconcile.MatchWindowLate = -0.5 },
		"bad aspect":         func(c *config.Config) { c.Splice.AspectRatio = "x:y" },
		"opacity":            func(c *config.Config) { c.Splice.BGOpacity = 1.5 },
		"font size":          func(c *config.Config) { c.Splice.FontSize = 0 },
		"timeout":            func(c *config.Config) { c.Alignment.TimeoutSeconds = -1 },
		"task language":      func(c *config.Config) { c.Alignment.TaskLanguage = "english!" },
		"decoder":            func(c *config.Config) { c.Detection.Decoder = "vlc" },
		"ntfy timeout":       func(c *config.Config) { c.Notifications.RequestTimeout = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
