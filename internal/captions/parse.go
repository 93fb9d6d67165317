package captions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stackreel/internal/services"
)

// Parse reads cue blocks separated by blank lines. Blocks without a timing
// line, such as the WEBVTT header or NOTE blocks, are skipped.
func Parse(r io.Reader) ([]Cue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "captions", "read", "read subtitles", err)
	}
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	var cues []Cue
	for i, block := range splitBlocks(content) {
		lines := strings.Split(block, "\n")
		timing := -1
		for j, line := range lines {
			if strings.Contains(line, "-->") {
				timing = j
				break
			}
		}
		if timing < 0 {
			continue
		}
		start, end, err := parseTiming(lines[timing])
		if err != nil {
			return nil, services.Wrap(services.ErrResource, "captions", "parse", fmt.Sprintf("block %d", i+1), err)
		}
		if end <= start {
			return nil, services.Wrap(services.ErrResource, "captions", "parse",
				fmt.Sprintf("block %d", i+1), fmt.Errorf("cue ends at %s, not after its start %s", FormatTimestamp(end), FormatTimestamp(start)))
		}
		text := make([]string, 0, len(lines)-timing-1)
		for _, line := range lines[timing+1:] {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				text = append(text, trimmed)
			}
		}
		cues = append(cues, Cue{Start: start, End: end, Text: strings.Join(text, " ")})
	}
	return cues, nil
}

// ParseFile parses the subtitle file at path.
func ParseFile(path string) ([]Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrResource, "captions", "open", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func splitBlocks(content string) []string {
	var blocks []string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = current[:0]
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

func parseTiming(line string) (float64, float64, error) {
	left, right, _ := strings.Cut(line, "-->")
	start, err := parseTimestamp(left)
	if err != nil {
		return 0, 0, err
	}
	// Cue settings such as "align:center" may follow the end stamp.
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, errors.New("missing end timestamp")
	}
	end, err := parseTimestamp(fields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp accepts HH:MM:SS.mmm or MM:SS.mmm with a comma or dot
// before the fraction.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.New("empty timestamp")
	}
	parts := strings.Split(strings.ReplaceAll(value, ",", "."), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours := 0
	if len(parts) == 3 {
		h, err := strconv.Atoi(parts[0])
		if err != nil || h < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		hours = h
		parts = parts[1:]
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	whole, frac, _ := strings.Cut(parts[1], ".")
	seconds, err := strconv.Atoi(whole)
	if err != nil || seconds < 0 || seconds > 59 || len(whole) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := float64(hours*3600 + minutes*60 + seconds)
	if frac != "" {
		digits, err := strconv.Atoi(frac)
		if err != nil || digits < 0 || len(frac) > 9 {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		scale := 1.0
		for range frac {
			scale *= 10
		}
		total += float64(digits) / scale
	}
	return total, nil
}
