package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"stackreel/internal/config"
	"stackreel/internal/services"
)

// Source is one stacked clip.
type Source struct {
	Path        string  `toml:"path" json:"path"`
	Weight      int     `toml:"weight" json:"weight"`
	Zoom        float64 `toml:"zoom" json:"zoom"`
	StartOffset float64 `toml:"start_offset" json:"start_offset"`
}

// Project describes one composition.
type Project struct {
	Name          string   `toml:"name" json:"name"`
	Output        string   `toml:"output" json:"output"`
	Audio         string   `toml:"audio" json:"audio"`
	Subtitles     string   `toml:"subtitles" json:"subtitles,omitempty"`
	CorrectedText string   `toml:"corrected_text" json:"corrected_text,omitempty"`
	Aspect        string   `toml:"aspect" json:"aspect,omitempty"`
	LimitSeconds  *float64 `toml:"limit_seconds" json:"limit_seconds,omitempty"`
	Sources       []Source `toml:"sources" json:"sources"`

	// File is the path the project was loaded from.
	File string `toml:"-" json:"file,omitempty"`
}

// Load reads and normalises a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "project", "read", path, err)
	}
	p, err := Decode(data)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.File = abs
	p.resolve(filepath.Dir(abs))
	return p, nil
}

// Decode parses project TOML without resolving paths.
func Decode(data []byte) (*Project, error) {
	var p Project
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, services.Wrap(services.ErrConfiguration, "project", "decode", strict.String(), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "project", "decode", "parse project file", err)
	}
	p.defaults()
	return &p, nil
}

// DecodeJSON parses a JSON project body and resolves relative paths
// against base.
func DecodeJSON(data []byte, base string) (*Project, error) {
	var p Project
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "project", "decode", "parse project json", err)
	}
	p.defaults()
	p.resolve(base)
	return &p, nil
}

func (p *Project) defaults() {
	for i := range p.Sources {
		if p.Sources[i].Zoom == 0 {
			p.Sources[i].Zoom = 1
		}
	}
}

func (p *Project) resolve(base string) {
	abs := func(value string) string {
		value = strings.TrimSpace(value)
		if value == "" {
			return ""
		}
		if strings.HasPrefix(value, "~") {
			if expanded, err := config.ExpandPath(value); err == nil {
				value = expanded
			}
		}
		if filepath.IsAbs(value) {
			return filepath.Clean(value)
		}
		return filepath.Join(base, value)
	}
	p.Output = abs(p.Output)
	p.Audio = abs(p.Audio)
	p.Subtitles = abs(p.Subtitles)
	p.CorrectedText = abs(p.CorrectedText)
	for i := range p.Sources {
		p.Sources[i].Path = abs(p.Sources[i].Path)
	}
	if strings.TrimSpace(p.Name) == "" && p.File != "" {
		p.Name = strings.TrimSuffix(filepath.Base(p.File), filepath.Ext(p.File))
	}
}

// Validate checks the project against the features enabled in cfg. Missing
// companion files for enabled features are configuration errors.
func (p *Project) Validate(cfg *config.Config) error {
	if len(p.Sources) == 0 {
		return services.Wrap(services.ErrConfiguration, "project", "validate", "at least one [[sources]] entry is required", nil)
	}
	for i, src := range p.Sources {
		if strings.TrimSpace(src.Path) == "" {
			return services.Wrap(services.ErrConfiguration, "project", "validate", fmt.Sprintf("sources[%d].path is required", i), nil)
		}
	}
	if strings.TrimSpace(p.Output) == "" {
		return services.Wrap(services.ErrConfiguration, "project", "validate", "output is required", nil)
	}
	if p.LimitSeconds != nil && *p.LimitSeconds < 0 {
		return services.Wrap(services.ErrConfiguration, "project", "validate", "limit_seconds must not be negative", nil)
	}
	if strings.TrimSpace(p.Audio) == "" {
		return services.Wrap(services.ErrConfiguration, "project", "validate", "audio is required", nil)
	}
	if cfg == nil {
		return nil
	}
	if cfg.Captions.Enabled {
		if err := requireCompanion(p.Subtitles, "subtitles", "captions.enabled"); err != nil {
			return err
		}
		if cfg.Captions.Reconcile {
			if err := requireCompanion(p.CorrectedText, "corrected_text", "captions.reconcile"); err != nil {
				return err
			}
		}
	}
	return nil
}

func requireCompanion(path, field, feature string) error {
	if strings.TrimSpace(path) == "" {
		return services.Wrap(services.ErrConfiguration, "project", "validate",
			fmt.Sprintf("%s is required when %s is on", field, feature), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrConfiguration, "project", "validate",
				fmt.Sprintf("%s %s does not exist (required by %s)", field, path, feature), err)
		}
		return services.Wrap(services.ErrResource, "project", "validate", fmt.Sprintf("stat %s", path), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "project", "validate", fmt.Sprintf("%s %s is a directory", field, path), nil)
	}
	return nil
}

// Limit returns the effective duration limit: the project override when
// set, otherwise the configured default.
func (p *Project) Limit(cfg *config.Config) float64 {
	if p.LimitSeconds != nil {
		return *p.LimitSeconds
	}
	if cfg == nil {
		return 0
	}
	return cfg.Encoder.LimitSeconds
}

// TargetRatio resolves the aspect override or the configured layout aspect.
func (p *Project) TargetRatio(cfg *config.Config) (float64, error) {
	if strings.TrimSpace(p.Aspect) != "" {
		ratio, err := config.ParseAspect(p.Aspect)
		if err != nil {
			return 0, services.Wrap(services.ErrConfiguration, "project", "aspect", p.Aspect, err)
		}
		return ratio, nil
	}
	ratio, err := cfg.Layout.TargetRatio()
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, "config", "aspect", cfg.Layout.Aspect, err)
	}
	return ratio, nil
}
