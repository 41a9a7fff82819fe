package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
	OutputDir string `toml:"output_dir"`
	ClipsDir  string `toml:"clips_dir"`
}

// Detection contains the caption change detector knobs.
type Detection struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	GlitchInterval      float64 `toml:"glitch_interval"`
	ROIBleed            int     `toml:"roi_bleed"`
	ROILineHeight       int     `toml:"roi_line_height"`
	BinarizeCutoff      int     `toml:"binarize_cutoff"`
	// MaxFrames stops the scan after this many frames. Zero scans the whole video.
	MaxFrames int `toml:"max_frames"`
	// Decoder is "ffmpeg" or "gocv"; gocv needs a binary built with -tags gocv.
	Decoder string `toml:"decoder"`
}

// Reconcile contains subtitle boundary matching windows, all in seconds.
type Reconcile struct {
	MatchWindowEarly float64 `toml:"match_window_early"`
	MatchWindowLate  float64 `toml:"match_window_late"`
	TimestampOffset  float64 `toml:"timestamp_offset"`
	StartNudge       float64 `toml:"start_nudge"`
}

// Splice contains rendering options for spliced variations.
type Splice struct {
	// AspectRatio crops replacement clips before scaling ("4:5", "0.8").
	// Empty uses the host video's own aspect ratio.
	AspectRatio  string  `toml:"aspect_ratio"`
	FontFile     string  `toml:"font_file"`
	FontSize     int     `toml:"font_size"`
	FontColor    string  `toml:"font_color"`
	BGColor      string  `toml:"bg_color"`
	BGOpacity    float64 `toml:"bg_opacity"`
	Margin       int     `toml:"margin"`
	Padding      int     `toml:"padding"`
	Captions     bool    `toml:"captions"`
	VideoCodec   string  `toml:"video_codec"`
	AudioCodec   string  `toml:"audio_codec"`
	ProbeWorkers int     `toml:"probe_workers"`
}

// Alignment contains forced-alignment subprocess settings.
type Alignment struct {
	Python         string `toml:"python"`
	TaskLanguage   string `toml:"task_language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Tools names the media binaries. Empty values fall back to environment
// overrides and then to the binary name on PATH.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Notifications configures ntfy run notices. An empty topic disables them.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	OnSuccess      bool   `toml:"on_success"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cuesplice.
//
// Configuration sections by subsystem:
//   - Paths: state, log, output and replacement clip directories
//   - Detection: frame scanner region and change-point filter
//   - Reconcile: subtitle boundary matching windows
//   - Splice: caption overlay styling and output codecs
//   - Alignment: forced-alignment python module
//   - Tools: ffmpeg/ffprobe binaries
//   - Notifications: ntfy run notices
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Detection     Detection     `toml:"detection"`
	Reconcile     Reconcile     `toml:"reconcile"`
	Splice        Splice        `toml:"splice"`
	Alignment     Alignment     `toml:"alignment"`
	Tools         Tools         `toml:"tools"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// Tuning gathers every numeric knob the detection and reconcile stages read.
// Callers pass it explicitly instead of consulting globals.
type Tuning struct {
	ConfidenceThreshold float64
	GlitchInterval      float64
	MatchWindowEarly    float64
	MatchWindowLate     float64
	TimestampOffset     float64
	StartNudge          float64
	ROIBleed            int
	ROILineHeight       int
	BinarizeCutoff      uint8
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file beside the config file or in the
// working directory is loaded first; variables already present in the environment win.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(resolvedPath); err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}
	seen := make(map[string]struct{}, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("load %s: %w", abs, err)
		}
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cuesplice.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state, log and output directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RegistryPath returns the SQLite database location for replacement selections.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.StateDir, "registry.db")
}

// LockPath returns the lock file guarding concurrent splice runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "cuesplice.lock")
}

// FFmpegBinary returns the ffmpeg executable.
func (c *Config) FFmpegBinary() string {
	if v := strings.TrimSpace(c.Tools.FFmpeg); v != "" {
		return v
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if v := strings.TrimSpace(c.Tools.FFprobe); v != "" {
		return v
	}
	return "ffprobe"
}

// PythonBinary returns the interpreter that hosts the aligner module.
func (c *Config) PythonBinary() string {
	if v := strings.TrimSpace(c.Alignment.Python); v != "" {
		return v
	}
	return defaultPython
}

// Tuning returns the detection and reconcile parameters.
func (c *Config) Tuning() Tuning {
	cutoff := c.Detection.BinarizeCutoff
	if cutoff < 0 {
		cutoff = 0
	} else if cutoff > 255 {
		cutoff = 255
	}
	return Tuning{
		ConfidenceThreshold: c.Detection.ConfidenceThreshold,
		GlitchInterval:      c.Detection.GlitchInterval,
		MatchWindowEarly:    c.Reconcile.MatchWindowEarly,
		MatchWindowLate:     c.Reconcile.MatchWindowLate,
		TimestampOffset:     c.Reconcile.TimestampOffset,
		StartNudge:          c.Reconcile.StartNudge,
		ROIBleed:            c.Detection.ROIBleed,
		ROILineHeight:       c.Detection.ROILineHeight,
		BinarizeCutoff:      uint8(cutoff),
	}
}

// Ratio returns the configured crop ratio as width/height, or 0 when unset.
func (s Splice) Ratio() (float64, error) {
	return ParseAspectRatio(s.AspectRatio)
}

// ParseAspectRatio accepts "W:H", "W/H" or a decimal ratio. Empty input returns 0.
func ParseAspectRatio(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	sep := strings.IndexAny(value, ":/")
	if sep < 0 {
		ratio, err := strconv.ParseFloat(value, 64)
		if err != nil || ratio <= 0 {
			return 0, fmt.Errorf("invalid aspect ratio %q", value)
		}
		return ratio, nil
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(value[:sep]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(value[sep+1:]), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, fmt.Errorf("invalid aspect ratio %q", value)
	}
	return w / h, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
