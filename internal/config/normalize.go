package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLayout()
	c.normalizeCaptions()
	if err := c.normalizeEncoder(); err != nil {
		return err
	}
	if err := c.normalizeArchive(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("STACKREEL_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryDB) == "" {
		c.Paths.HistoryDB = defaultHistoryDB
	}
	if c.Paths.HistoryDB, err = expandPath(c.Paths.HistoryDB); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeLayout() {
	c.Layout.Aspect = strings.TrimSpace(c.Layout.Aspect)
	if c.Layout.Aspect == "" {
		c.Layout.Aspect = defaultAspect
	}
	c.Layout.LineColor = strings.TrimSpace(c.Layout.LineColor)
	if c.Layout.LineColor == "" {
		c.Layout.LineColor = defaultLineColor
	}
	if len(c.Layout.Ladder) == 0 {
		c.Layout.Ladder = DefaultLadder()
	} else {
		ladder := append([]int(nil), c.Layout.Ladder...)
		sort.Ints(ladder)
		c.Layout.Ladder = ladder
	}
}

func (c *Config) normalizeCaptions() {
	if c.Captions.CharBudget == 0 {
		c.Captions.CharBudget = defaultCharBudget
	}
	if c.Captions.Punctuation == nil {
		c.Captions.Punctuation = DefaultPunctuation()
	} else {
		marks := make([]string, 0, len(c.Captions.Punctuation))
		seen := make(map[string]struct{}, len(c.Captions.Punctuation))
		for _, mark := range c.Captions.Punctuation {
			mark = strings.TrimSpace(mark)
			if mark == "" {
				continue
			}
			if _, exists := seen[mark]; exists {
				continue
			}
			seen[mark] = struct{}{}
			marks = append(marks, mark)
		}
		c.Captions.Punctuation = marks
	}
	c.Captions.FontFile = strings.TrimSpace(c.Captions.FontFile)
	if c.Captions.FontFile != "" {
		if expanded, err := expandPath(c.Captions.FontFile); err == nil {
			c.Captions.FontFile = expanded
		}
	}
	if c.Captions.FontSize <= 0 {
		c.Captions.FontSize = defaultFontSize
	}
	c.Captions.FontColor = strings.TrimSpace(c.Captions.FontColor)
	if c.Captions.FontColor == "" {
		c.Captions.FontColor = defaultFontColor
	}
}

func (c *Config) normalizeEncoder() error {
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		if value, ok := os.LookupEnv("STACKREEL_FFMPEG"); ok {
			c.Encoder.FFmpegBinary = strings.TrimSpace(value)
		}
	}
	c.Encoder.FFprobeBinary = strings.TrimSpace(c.Encoder.FFprobeBinary)
	if c.Encoder.FFprobeBinary == "" {
		if value, ok := os.LookupEnv("STACKREEL_FFPROBE"); ok {
			c.Encoder.FFprobeBinary = strings.TrimSpace(value)
		}
	}
	c.Encoder.Codec = strings.TrimSpace(c.Encoder.Codec)
	if c.Encoder.Codec == "" {
		c.Encoder.Codec = defaultCodec
	}
	if c.Encoder.FPS == 0 {
		c.Encoder.FPS = defaultFPS
	}
	c.Encoder.Preset = strings.TrimSpace(c.Encoder.Preset)
	c.Encoder.PixelFormat = strings.TrimSpace(c.Encoder.PixelFormat)
	if c.Encoder.PixelFormat == "" {
		c.Encoder.PixelFormat = defaultPixelFormat
	}
	return nil
}

func (c *Config) normalizeArchive() error {
	var err error
	if strings.TrimSpace(c.Archive.Dir) == "" {
		c.Archive.Dir = defaultArchiveDir
	}
	if c.Archive.Dir, err = expandPath(c.Archive.Dir); err != nil {
		return fmt.Errorf("archive.dir: %w", err)
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
