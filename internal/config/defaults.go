package config

const (
	defaultConfigPath = "~/.config/cuesplice/config.toml"
	defaultStateDir   = "~/.local/share/cuesplice"
	defaultLogDir     = "~/.local/share/cuesplice/logs"
	defaultOutputDir  = "output"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"

	defaultConfidenceThreshold = 4.2
	defaultGlitchInterval      = 0.27
	defaultROIBleed            = 40
	defaultROILineHeight       = 60
	defaultBinarizeCutoff      = 200

	defaultMatchWindowEarly = 0.25
	defaultMatchWindowLate  = 1.5
	defaultTimestampOffset  = 0.05
	defaultStartNudge       = 0.1

	defaultFontSize     = 36
	defaultFontColor    = "white"
	defaultBGColor      = "black"
	defaultBGOpacity    = 0.5
	defaultMargin       = 26
	defaultPadding      = 6
	defaultVideoCodec   = "libx264"
	defaultAudioCodec   = "aac"
	defaultProbeWorkers = 4

	defaultPython           = "python3"
	defaultTaskLanguage     = "eng"
	defaultAlignmentTimeout = 600

	defaultNtfyTimeout = 10

	envFFmpeg  = "CUESPLICE_FFMPEG"
	envFFprobe = "CUESPLICE_FFPROBE"
	envPython  = "CUESPLICE_PYTHON"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:  defaultStateDir,
			LogDir:    defaultLogDir,
			OutputDir: defaultOutputDir,
		},
		Detection: Detection{
			ConfidenceThreshold: defaultConfidenceThreshold,
			GlitchInterval:      defaultGlitchInterval,
			ROIBleed:            defaultROIBleed,
			ROILineHeight:       defaultROILineHeight,
			BinarizeCutoff:      defaultBinarizeCutoff,
			Decoder:             "ffmpeg",
		},
		Reconcile: Reconcile{
			MatchWindowEarly: defaultMatchWindowEarly,
			MatchWindowLate:  defaultMatchWindowLate,
			TimestampOffset:  defaultTimestampOffset,
			StartNudge:       defaultStartNudge,
		},
		Splice: Splice{
			FontSize:     defaultFontSize,
			FontColor:    defaultFontColor,
			BGColor:      defaultBGColor,
			BGOpacity:    defaultBGOpacity,
			Margin:       defaultMargin,
			Padding:      defaultPadding,
			Captions:     true,
			VideoCodec:   defaultVideoCodec,
			AudioCodec:   defaultAudioCodec,
			ProbeWorkers: defaultProbeWorkers,
		},
		Alignment: Alignment{
			TaskLanguage:   defaultTaskLanguage,
			TimeoutSeconds: defaultAlignmentTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
			OnSuccess:      true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
