package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int          `json:"index"`
	CodecName    string       `json:"codec_name"`
	CodecType    string       `json:"codec_type"`
	Duration     string       `json:"duration"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	FrameRate    string       `json:"r_frame_rate"`
	SampleRate   string       `json:"sample_rate"`
	Channels     int          `json:"channels"`
	Tags         StreamTags   `json:"tags"`
	SideDataList []SideData   `json:"side_data_list"`
	Disposition  *Disposition `json:"disposition,omitempty"`
}

// StreamTags carries the legacy rotate tag written by phone cameras.
type StreamTags struct {
	Rotate string `json:"rotate"`
}

// SideData carries display matrix rotation on newer ffprobe builds.
type SideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

// Disposition marks attached pictures so cover art is never taken as video.
type Disposition struct {
	AttachedPic int `json:"attached_pic"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return Decode(output)
}

// Decode parses an ffprobe JSON payload.
func Decode(payload []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VideoStream returns the first real video stream, skipping attached pictures.
func (r Result) VideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if stream.Disposition != nil && stream.Disposition.AttachedPic == 1 {
			continue
		}
		return stream, true
	}
	return Stream{}, false
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration, falling back to the longest
// stream duration. Returns 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	longest := 0.0
	for _, stream := range r.Streams {
		if d := parseFloat(stream.Duration); d > longest {
			longest = d
		}
	}
	return longest
}

// Rotation returns the clockwise display rotation normalised to 0, 90, 180 or 270.
func (s Stream) Rotation() int {
	degrees := 0.0
	if tag := strings.TrimSpace(s.Tags.Rotate); tag != "" {
		if v, err := strconv.ParseFloat(tag, 64); err == nil {
			degrees = v
		}
	}
	for _, side := range s.SideDataList {
		if strings.EqualFold(side.SideDataType, "Display Matrix") && side.Rotation != 0 {
			// Display matrix rotation is counter-clockwise.
			degrees = -side.Rotation
		}
	}
	normalized := int(math.Round(degrees)) % 360
	if normalized < 0 {
		normalized += 360
	}
	return (normalized / 90) * 90
}

// DisplaySize returns the frame size as shown to the viewer, swapping
// dimensions for quarter-turn rotations.
func (s Stream) DisplaySize() (int, int) {
	switch s.Rotation() {
	case 90, 270:
		return s.Height, s.Width
	default:
		return s.Width, s.Height
	}
}

// FPS returns the stream frame rate, or 0 when unknown.
func (s Stream) FPS() float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s.FrameRate), "/")
	if !ok {
		v := parseFloat(num)
		if math.IsNaN(v) {
			return 0
		}
		return v
	}
	n, d := parseFloat(num), parseFloat(den)
	if math.IsNaN(n) || math.IsNaN(d) || d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
