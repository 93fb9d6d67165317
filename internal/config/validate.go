package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be an http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateLayout() error {
	if _, err := ParseAspect(c.Layout.Aspect); err != nil {
		return fmt.Errorf("layout.aspect: %w", err)
	}
	if c.Layout.LineWidth < 0 {
		return errors.New("layout.line_width must be >= 0")
	}
	if _, err := ParseHexColor(c.Layout.LineColor); err != nil {
		return fmt.Errorf("layout.line_color: %w", err)
	}
	if len(c.Layout.Ladder) == 0 {
		return errors.New("layout.ladder must include at least one size")
	}
	for i, size := range c.Layout.Ladder {
		if size <= 0 {
			return fmt.Errorf("layout.ladder[%d] must be positive", i)
		}
		if i > 0 && size == c.Layout.Ladder[i-1] {
			return fmt.Errorf("layout.ladder contains duplicate size %d", size)
		}
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if !c.Captions.Enabled {
		return nil
	}
	if c.Captions.CharBudget <= 0 {
		return errors.New("captions.char_budget must be positive")
	}
	if c.Captions.FontSize <= 0 {
		return errors.New("captions.font_size must be positive")
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if err := ensurePositiveMap(map[string]int{
		"encoder.fps": c.Encoder.FPS,
	}); err != nil {
		return err
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 51 {
		return errors.New("encoder.crf must be between 0 and 51")
	}
	if c.Encoder.LimitSeconds < 0 {
		return errors.New("encoder.limit_seconds must be >= 0 (0 disables the limit)")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.Enabled && strings.TrimSpace(c.Archive.Dir) == "" {
		return errors.New("archive.dir must be set when archive.enabled is true")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

// ParseAspect converts "W:H", "W/H", or a decimal string into a positive
// width/height ratio.
func ParseAspect(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty aspect ratio")
	}
	for _, sep := range []string{":", "/"} {
		if left, right, ok := strings.Cut(value, sep); ok {
			w, errW := strconv.ParseFloat(strings.TrimSpace(left), 64)
			h, errH := strconv.ParseFloat(strings.TrimSpace(right), 64)
			if errW != nil || errH != nil {
				return 0, fmt.Errorf("invalid aspect ratio %q", value)
			}
			if w <= 0 || h <= 0 {
				return 0, fmt.Errorf("aspect ratio %q must be positive", value)
			}
			return w / h, nil
		}
	}
	ratio, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid aspect ratio %q", value)
	}
	if ratio <= 0 {
		return 0, fmt.Errorf("aspect ratio %q must be positive", value)
	}
	return ratio, nil
}

// ParseHexColor converts "#RRGGBB" (leading # optional) into its components.
func ParseHexColor(value string) ([3]uint8, error) {
	var rgb [3]uint8
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) != 6 {
		return rgb, fmt.Errorf("color %q must be #RRGGBB", value)
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return rgb, fmt.Errorf("color %q must be #RRGGBB", value)
		}
		rgb[i] = uint8(n)
	}
	return rgb, nil
}
