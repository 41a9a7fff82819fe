package config

import (
	"fmt"
	"os"
	"strings"

	"cuesplice/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeAlignment()
	if err := c.normalizeSplice(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.Detection.Decoder = strings.ToLower(strings.TrimSpace(c.Detection.Decoder))
	if c.Detection.Decoder == "" {
		c.Detection.Decoder = "ffmpeg"
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.ClipsDir, err = expandPath(strings.TrimSpace(c.Paths.ClipsDir)); err != nil {
		return fmt.Errorf("paths.clips_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		if value, ok := os.LookupEnv(envFFmpeg); ok {
			c.Tools.FFmpeg = strings.TrimSpace(value)
		}
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		if value, ok := os.LookupEnv(envFFprobe); ok {
			c.Tools.FFprobe = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeAlignment() {
	c.Alignment.Python = strings.TrimSpace(c.Alignment.Python)
	if c.Alignment.Python == "" {
		if value, ok := os.LookupEnv(envPython); ok {
			c.Alignment.Python = strings.TrimSpace(value)
		}
	}
	c.Alignment.TaskLanguage = strings.ToLower(strings.TrimSpace(c.Alignment.TaskLanguage))
	if c.Alignment.TaskLanguage == "" {
		c.Alignment.TaskLanguage = defaultTaskLanguage
	}
	if code, ok := language.TaskLanguage(c.Alignment.TaskLanguage); ok {
		c.Alignment.TaskLanguage = code
	}
	if c.Alignment.TimeoutSeconds < 0 {
		c.Alignment.TimeoutSeconds = 0
	}
}

func (c *Config) normalizeSplice() error {
	c.Splice.AspectRatio = strings.TrimSpace(c.Splice.AspectRatio)
	if c.Splice.FontFile != "" {
		expanded, err := expandPath(strings.TrimSpace(c.Splice.FontFile))
		if err != nil {
			return fmt.Errorf("splice.font_file: %w", err)
		}
		c.Splice.FontFile = expanded
	}
	c.Splice.FontColor = strings.TrimSpace(c.Splice.FontColor)
	if c.Splice.FontColor == "" {
		c.Splice.FontColor = defaultFontColor
	}
	c.Splice.BGColor = strings.TrimSpace(c.Splice.BGColor)
	if c.Splice.BGColor == "" {
		c.Splice.BGColor = defaultBGColor
	}
	c.Splice.VideoCodec = strings.TrimSpace(c.Splice.VideoCodec)
	if c.Splice.VideoCodec == "" {
		c.Splice.VideoCodec = defaultVideoCodec
	}
	c.Splice.AudioCodec = strings.TrimSpace(c.Splice.AudioCodec)
	if c.Splice.AudioCodec == "" {
		c.Splice.AudioCodec = defaultAudioCodec
	}
	if c.Splice.ProbeWorkers <= 0 {
		c.Splice.ProbeWorkers = defaultProbeWorkers
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
