package ffprobe_test

import (
	"testing"

	"stackreel/internal/media/ffprobe"
)

const samplePayload = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "mjpeg", "width": 600, "height": 600, "disposition": {"attached_pic": 1}},
    {"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001",
     "side_data_list": [{"side_data_type": "Display Matrix", "rotation": -90}]},
    {"index": 2, "codec_type": "audio", "codec_name": "aac", "duration": "12.5"}
  ],
  "format": {"filename": "clip.mp4", "duration": "12.480000"}
}`

func TestDecodeSelectsRealVideoStream(t *testing.T) {
	result, err := ffprobe.Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	video, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if video.Index != 1 {
		t.Fatalf("expected stream 1, got %d", video.Index)
	}
	if video.Rotation() != 90 {
		t.Fatalf("expected rotation 90, got %d", video.Rotation())
	}
	w, h := video.DisplaySize()
	if w != 1080 || h != 1920 {
		t.Fatalf("expected rotated 1080x1920, got %dx%d", w, h)
	}
	if fps := video.FPS(); fps < 29.96 || fps > 29.98 {
		t.Fatalf("unexpected fps %v", fps)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("expected 1 audio stream, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 12.48 {
		t.Fatalf("unexpected duration %v", result.DurationSeconds())
	}
}

func TestDurationFallsBackToStreams(t *testing.T) {
	result := ffprobe.Result{Streams: []ffprobe.Stream{{Duration: "3.5"}, {Duration: "4.25"}}}
	if got := result.DurationSeconds(); got != 4.25 {
		t.Fatalf("expected 4.25, got %v", got)
	}
}

func TestRotationFromLegacyTag(t *testing.T) {
	tests := []struct {
		tag  string
		want int
	}{
		{"", 0},
		{"90", 90},
		{"-90", 270},
		{"180", 180},
		{"450", 90},
	}
	for _, tc := range tests {
		s := ffprobe.Stream{Tags: ffprobe.StreamTags{Rotate: tc.tag}}
		if got := s.Rotation(); got != tc.want {
			t.Fatalf("tag %q: expected %d, got %d", tc.tag, tc.want, got)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := ffprobe.Decode([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
