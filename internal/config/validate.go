package config

import (
	"errors"
	"fmt"

	"cuesplice/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDetection(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateSplice(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateDetection() error {
	d := c.Detection
	if err := ensureNonNegative(map[string]float64{
		"detection.confidence_threshold": d.ConfidenceThreshold,
		"detection.glitch_interval":      d.GlitchInterval,
	}); err != nil {
		return err
	}
	if d.ROIBleed < 0 {
		return errors.New("detection.roi_bleed must be >= 0")
	}
	if d.ROILineHeight <= 0 {
		return errors.New("detection.roi_line_height must be positive")
	}
	if d.BinarizeCutoff < 0 || d.BinarizeCutoff > 255 {
		return errors.New("detection.binarize_cutoff must be between 0 and 255")
	}
	if d.MaxFrames < 0 {
		return errors.New("detection.max_frames must be >= 0")
	}
	switch d.Decoder {
	case "", "ffmpeg", "gocv":
	default:
		return fmt.Errorf("detection.decoder %q must be ffmpeg or gocv", d.Decoder)
	}
	return nil
}

func (c *Config) validateReconcile() error {
	r := c.Reconcile
	return ensureNonNegative(map[string]float64{
		"reconcile.match_window_early": r.MatchWindowEarly,
		"reconcile.match_window_late":  r.MatchWindowLate,
		"reconcile.timestamp_offset":   r.TimestampOffset,
		"reconcile.start_nudge":        r.StartNudge,
	})
}

func (c *Config) validateSplice() error {
	s := c.Splice
	if _, err := s.Ratio(); err != nil {
		return fmt.Errorf("splice.aspect_ratio: %w", err)
	}
	if s.FontSize <= 0 {
		return errors.New("splice.font_size must be positive")
	}
	if s.BGOpacity < 0 || s.BGOpacity > 1 {
		return errors.New("splice.bg_opacity must be between 0 and 1")
	}
	if s.Margin < 0 {
		return errors.New("splice.margin must be >= 0")
	}
	if s.Padding < 0 {
		return errors.New("splice.padding must be >= 0")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.TimeoutSeconds < 0 {
		return errors.New("alignment.timeout_seconds must be >= 0")
	}
	if _, ok := language.TaskLanguage(c.Alignment.TaskLanguage); !ok {
		return fmt.Errorf("alignment.task_language %q is not a recognized language", c.Alignment.TaskLanguage)
	}
	return nil
}

func ensureNonNegative(values map[string]float64) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
