package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"stackreel/internal/config"
	"stackreel/internal/notifications"
)

type captured struct {
	title, tags, priority, body string
}

func newTopic(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte("topic says no"))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRenderFailed, notifications.Notice{Err: errors.New("x")}); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestPublishFormatsMessages(t *testing.T) {
	tests := []struct {
		name         string
		event        notifications.Event
		notice       notifications.Notice
		wantTitle    string
		wantBody     string
		wantTags     string
		wantPriority string
	}{
		{
			name:  "completed",
			event: notifications.EventRenderCompleted,
			notice: notifications.Notice{
				Project:    "demo",
				Output:     "/out/demo.mp4",
				Resolution: "1080x1920",
				Duration:   12.5,
				Elapsed:    42 * time.Second,
			},
			wantTitle: "stackreel - Render complete",
			wantBody:  "demo ready: demo.mp4 (1080x1920, 12.5s)\nRendered in 42s",
			wantTags:  "stackreel,render,completed",
		},
		{
			name:  "rejected",
			event: notifications.EventRenderFailed,
			notice: notifications.Notice{
				Project: "demo",
				Status:  "rejected",
				Err:     errors.New("insufficient source: a.mp4"),
			},
			wantTitle:    "stackreel - Render rejected",
			wantBody:     "demo rejected: insufficient source: a.mp4",
			wantTags:     "stackreel,render,rejected",
			wantPriority: "high",
		},
		{
			name:         "test",
			event:        notifications.EventTest,
			wantTitle:    "stackreel - Test",
			wantBody:     "Notification test",
			wantTags:     "stackreel,test",
			wantPriority: "low",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newTopic(t, http.StatusOK)
			cfg := config.Default()
			cfg.Notifications.NtfyTopic = srv.URL + "/renders"
			svc := notifications.NewService(&cfg)
			if err := svc.Publish(context.Background(), tt.event, tt.notice); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			msgs := got()
			if len(msgs) != 1 {
				t.Fatalf("expected 1 request, got %d", len(msgs))
			}
			m := msgs[0]
			if m.title != tt.wantTitle || m.body != tt.wantBody || m.tags != tt.wantTags || m.priority != tt.wantPriority {
				t.Fatalf("unexpected message %+v", m)
			}
		})
	}
}

func TestPublishSkipsSuccessWhenDisabled(t *testing.T) {
	srv, got := newTopic(t, http.StatusOK)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	cfg.Notifications.OnSuccess = false
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.EventRenderCompleted, notifications.Notice{Project: "demo"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n := len(got()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestPublishReportsHTTPErrors(t *testing.T) {
	srv, _ := newTopic(t, http.StatusForbidden)
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = srv.URL
	svc := notifications.NewService(&cfg)
	err := svc.Publish(context.Background(), notifications.EventTest, notifications.Notice{})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
