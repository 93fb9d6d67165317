package config

const (
	defaultWorkDir      = "~/.local/share/stackreel/work"
	defaultOutputDir    = "~/Videos/stackreel"
	defaultLogDir       = "~/.local/share/stackreel/logs"
	defaultHistoryDB    = "~/.local/share/stackreel/history.db"
	defaultAPIBind      = "127.0.0.1:7488"
	defaultAspect       = "9:16"
	defaultLineWidth    = 4
	defaultLineColor    = "#FFFFFF"
	defaultCharBudget   = 8
	defaultFontSize     = 170
	defaultFontColor    = "white"
	defaultCodec        = "libx264"
	defaultFPS          = 60
	defaultPreset       = "medium"
	defaultCRF          = 20
	defaultPixelFormat  = "yuv420p"
	defaultLimitSeconds = 59
	defaultArchiveDir   = "~/.local/share/stackreel/archive"
	defaultNtfyTimeout  = 10
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// DefaultLadder is the standard ascending list of output sizes along the
// stacking axis.
func DefaultLadder() []int {
	return []int{144, 240, 360, 480, 720, 1080, 1440, 2160}
}

// DefaultPunctuation lists the cue endings that close a caption page.
func DefaultPunctuation() []string {
	return []string{".", "!", "?", ",", ";", ":"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
			APIBind:   defaultAPIBind,
		},
		Layout: Layout{
			Aspect:    defaultAspect,
			LineWidth: defaultLineWidth,
			LineColor: defaultLineColor,
			Ladder:    DefaultLadder(),
		},
		Captions: Captions{
			Enabled:             true,
			CharBudget:          defaultCharBudget,
			Punctuation:         DefaultPunctuation(),
			NormalizeTypography: true,
			FontSize:            defaultFontSize,
			FontColor:           defaultFontColor,
		},
		Encoder: Encoder{
			Codec:        defaultCodec,
			FPS:          defaultFPS,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			PixelFormat:  defaultPixelFormat,
			LimitSeconds: defaultLimitSeconds,
		},
		Archive: Archive{
			Dir: defaultArchiveDir,
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
