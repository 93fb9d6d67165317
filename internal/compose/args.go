package compose

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"stackreel/internal/layout"
	"stackreel/internal/media"
)

// Output describes the encoded file.
type Output struct {
	Path        string
	Codec       string
	FPS         int
	Preset      string
	CRF         int
	PixelFormat string
}

// referenceWidth is the output width the configured caption font size is tuned for.
const referenceWidth = 1080

// BuildArgs returns the ffmpeg arguments that render t into out.Path.
func BuildArgs(t Timeline, out Output) ([]string, error) {
	if t.Plan == nil || len(t.Plan.Elements) == 0 {
		return nil, errors.New("compose: timeline has no layout plan")
	}
	if strings.TrimSpace(out.Path) == "" {
		return nil, errors.New("compose: output path is empty")
	}
	if out.FPS <= 0 {
		return nil, fmt.Errorf("compose: invalid frame rate %d", out.FPS)
	}
	duration := t.Duration()
	if duration <= 0 {
		return nil, errors.New("compose: timeline duration is zero")
	}

	var inputs []string
	var graph []string
	var labels []string
	input := 0
	for i, el := range t.Plan.Elements {
		label := fmt.Sprintf("e%d", i)
		switch h := el.Handle.(type) {
		case *media.Clip:
			if h.Path() == "" {
				return nil, fmt.Errorf("compose: source %s has no file path", el.Name)
			}
			inputs = append(inputs, "-i", h.Path())
			chain := append(h.Filters(), fmt.Sprintf("fps=%d", out.FPS), "format="+pixelFormat(out))
			graph = append(graph, fmt.Sprintf("[%d:v]%s[%s]", input, strings.Join(chain, ","), label))
			input++
		case *media.Solid:
			if h.Width() <= 0 || h.Height() <= 0 {
				continue
			}
			graph = append(graph, fmt.Sprintf("%s,setsar=1,format=%s[%s]", h.Source(out.FPS), pixelFormat(out), label))
		default:
			return nil, fmt.Errorf("compose: unsupported handle %T for %s", el.Handle, el.Name)
		}
		labels = append(labels, "["+label+"]")
	}

	stack := "vstack"
	if t.Plan.Orientation == layout.Landscape {
		stack = "hstack"
	}
	if len(labels) == 1 {
		graph = append(graph, labels[0]+"null[stack]")
	} else {
		graph = append(graph, fmt.Sprintf("%s%s=inputs=%d[stack]", strings.Join(labels, ""), stack, len(labels)))
	}

	post := fitFilters(t.Plan.Canvas, t.Plan.Resolution)
	if pad := duration - t.Plan.Duration; pad > 0 {
		post = append(post, fmt.Sprintf("tpad=stop_mode=clone:stop_duration=%s", seconds(pad)))
	}
	for _, page := range t.VisiblePages() {
		post = append(post, drawtext(page.Text, page.Start, page.End, t.Caption, t.Plan.Resolution.Width))
	}
	graph = append(graph, "[stack]"+strings.Join(post, ",")+"[vout]")

	var audioMap []string
	if t.Audio != nil {
		clip, ok := t.Audio.(*media.Clip)
		if !ok || clip.Path() == "" {
			return nil, fmt.Errorf("compose: audio %s has no file path", t.Audio.Name())
		}
		inputs = append(inputs, "-i", clip.Path())
		audioMap = []string{"-map", fmt.Sprintf("%d:a:0", input), "-c:a", "aac", "-b:a", "192k"}
	}

	args := []string{"-hide_banner", "-nostdin", "-y"}
	args = append(args, inputs...)
	args = append(args, "-filter_complex", strings.Join(graph, ";"), "-map", "[vout]")
	args = append(args, audioMap...)
	args = append(args, "-t", seconds(duration))
	args = append(args, "-c:v", codec(out), "-r", strconv.Itoa(out.FPS), "-pix_fmt", pixelFormat(out))
	if out.Preset != "" {
		args = append(args, "-preset", out.Preset)
	}
	if out.CRF > 0 {
		args = append(args, "-crf", strconv.Itoa(out.CRF))
	}
	args = append(args, "-movflags", "+faststart", out.Path)
	return args, nil
}

// fitFilters pads a stack smaller than the resolution or scales a larger
// one down, then pads to even dimensions for 4:2:0 chroma.
func fitFilters(canvas, res layout.Size) []string {
	evenW, evenH := even(res.Width), even(res.Height)
	if canvas.Width <= res.Width && canvas.Height <= res.Height {
		return []string{fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black", evenW, evenH)}
	}
	filters := []string{fmt.Sprintf("scale=%d:%d", res.Width, res.Height), "setsar=1"}
	if evenW != res.Width || evenH != res.Height {
		filters = append(filters, fmt.Sprintf("pad=%d:%d:0:0:color=black", evenW, evenH))
	}
	return filters
}

func drawtext(text string, start, end float64, style CaptionStyle, width int) string {
	size := style.FontSize
	if size <= 0 {
		size = 170
	}
	size = int(math.Round(float64(size) * float64(width) / referenceWidth))
	if size < 8 {
		size = 8
	}
	color := style.FontColor
	if color == "" {
		color = "white"
	}
	opts := []string{}
	if style.FontFile != "" {
		opts = append(opts, "fontfile="+escapeOption(style.FontFile))
	}
	opts = append(opts,
		"expansion=none",
		"text="+escapeOption(text),
		fmt.Sprintf("fontsize=%d", size),
		"fontcolor="+escapeOption(color),
		"x=(w-text_w)/2",
		"y=(h-text_h)/2",
		fmt.Sprintf("enable=gte(t,%s)*lt(t,%s)", seconds(start), seconds(end)),
	)
	return escapeGraph("drawtext=" + strings.Join(opts, ":"))
}

// ffmpeg unescapes a filter description twice: once while splitting the
// graph, once while splitting the filter's key=value options.
var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `[`, `\[`, `]`, `\]`, `,`, `\,`, `;`, `\;`)
)

func escapeOption(s string) string { return optionEscaper.Replace(s) }

func escapeGraph(s string) string { return graphEscaper.Replace(s) }

func seconds(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

func even(v int) int {
	return (v + 1) &^ 1
}

func codec(out Output) string {
	if out.Codec == "" {
		return "libx264"
	}
	return out.Codec
}

func pixelFormat(out Output) string {
	if out.PixelFormat == "" {
		return "yuv420p"
	}
	return out.PixelFormat
}
