package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"stackreel/internal/config"
)

const userAgent = "stackreel/0.1"

// Event names the render milestone being announced.
type Event string

const (
	EventRenderCompleted Event = "render_completed"
	EventRenderFailed    Event = "render_failed"
	EventTest            Event = "test"
)

// Notice carries the render details included in a message.
type Notice struct {
	Project    string
	Output     string
	Resolution string
	Duration   float64
	Elapsed    time.Duration
	Status     string
	Err        error
}

// Service publishes render events.
type Service interface {
	Publish(ctx context.Context, event Event, notice Notice) error
}

// NewService builds an ntfy-backed service, or a no-op one when no topic is set.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:  strings.TrimSpace(cfg.Notifications.NtfyTopic),
		client:    &http.Client{Timeout: timeout},
		onSuccess: cfg.Notifications.OnSuccess,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	client    *http.Client
	onSuccess bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, notice Notice) error {
	msg, ok := n.format(event, notice)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, notice Notice) (message, bool) {
	name := strings.TrimSpace(notice.Project)
	if name == "" {
		name = "render"
	}
	switch event {
	case EventRenderCompleted:
		if !n.onSuccess {
			return message{}, false
		}
		body := fmt.Sprintf("%s ready: %s", name, filepath.Base(notice.Output))
		if notice.Resolution != "" {
			body += fmt.Sprintf(" (%s, %.1fs)", notice.Resolution, notice.Duration)
		}
		if notice.Elapsed > 0 {
			body += fmt.Sprintf("\nRendered in %s", notice.Elapsed.Round(time.Second))
		}
		return message{
			title: "stackreel - Render complete",
			body:  body,
			tags:  []string{"stackreel", "render", "completed"},
		}, true
	case EventRenderFailed:
		reason := "unknown error"
		if notice.Err != nil {
			reason = strings.TrimSpace(notice.Err.Error())
		}
		status := notice.Status
		if status == "" {
			status = "failed"
		}
		return message{
			title:    "stackreel - Render " + status,
			body:     fmt.Sprintf("%s %s: %s", name, status, reason),
			tags:     []string{"stackreel", "render", status},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "stackreel - Test",
			body:     "Notification test",
			tags:     []string{"stackreel", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", msg.title)
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Notice) error { return nil }
